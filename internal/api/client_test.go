package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}, func() string { return token })
}

func TestLogin_DecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"data":{"token":"tok","user":{"company_username_norm":"jdoe","role_key":"C_SUITE"}}}`))
	}, "")

	res, err := c.Login(context.Background(), "jdoe@corp.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "tok" || res.User.CompanyUsernameNorm != "jdoe" {
		t.Errorf("result = %+v", res)
	}
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"data":[]}`))
	}, "tok-9")

	if _, err := c.ListUsers(context.Background()); err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if gotAuth != "Bearer tok-9" {
		t.Errorf("Authorization = %q, want Bearer tok-9", gotAuth)
	}
	if gotReqID == "" {
		t.Error("X-Request-ID not set")
	}
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[]}`))
	}, "")

	if _, err := c.ListUsers(context.Background()); err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want unset", gotAuth)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantAuth bool
		wantMsg  string
	}{
		{"unauthorized", 401, `{"error":"token expired"}`, true, ""},
		{"server error with message", 500, `{"error":"db down"}`, false, "db down"},
		{"bad request message field", 400, `{"message":"bad range"}`, false, "bad range"},
		{"opaque body", 502, `gateway`, false, "backend returned status 502"},
	}

	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}, "tok")

		_, err := c.ListUsers(context.Background())
		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if tt.wantAuth {
			if !errors.Is(err, ErrUnauthorized) {
				t.Errorf("%s: err = %v, want ErrUnauthorized", tt.name, err)
			}
			continue
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("%s: err = %v, want *APIError", tt.name, err)
		}
		if apiErr.Status != tt.status || apiErr.Error() != tt.wantMsg {
			t.Errorf("%s: got (%d, %q), want (%d, %q)", tt.name, apiErr.Status, apiErr.Error(), tt.status, tt.wantMsg)
		}
	}
}

func TestInsightsTop_QueryParams(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		w.Write([]byte(`{"data":{"items":[]}}`))
	}, "tok")

	_, err := c.InsightsTop(context.Background(), InsightsQuery{
		From: "2026-08-25", To: "2026-08-31", By: "category", Limit: 10,
	})
	if err != nil {
		t.Fatalf("InsightsTop: %v", err)
	}
	for _, part := range []string{"from=2026-08-25", "to=2026-08-31", "by=category", "limit=10"} {
		if !strings.Contains(got, part) {
			t.Errorf("query %q missing %q", got, part)
		}
	}
	// The insights endpoints are company-wide: no subject param exists.
	if strings.Contains(got, "user=") {
		t.Errorf("query %q carries a subject param", got)
	}
}

func TestUserAnalysis_PathAndParams(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":{"kpis":{"logs":3}}}`))
	}, "tok")

	raw, err := c.UserAnalysis(context.Background(), "j doe", "2026-08-25", "2026-08-31")
	if err != nil {
		t.Fatalf("UserAnalysis: %v", err)
	}
	if gotPath != "/api/users/j%20doe/analysis" {
		t.Errorf("path = %q", gotPath)
	}
	for _, part := range []string{"from=2026-08-25", "to=2026-08-31"} {
		if !strings.Contains(gotQuery, part) {
			t.Errorf("query %q missing %q", gotQuery, part)
		}
	}
	if string(raw) != `{"kpis":{"logs":3}}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestLogs_ReturnsRawBody(t *testing.T) {
	body := `{"data":{"items":[{"ts":"x"}],"total":1}}`
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(body))
	}, "tok")

	raw, err := c.Logs(context.Background(), RecordQuery{From: "a", To: "b", Page: 2, Limit: 100, User: "jdoe"})
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	// The envelope is passed through untouched; the normalizer owns it.
	if string(raw) != body {
		t.Errorf("raw = %s", raw)
	}
	for _, part := range []string{"page=2", "limit=100", "user=jdoe"} {
		if !strings.Contains(gotQuery, part) {
			t.Errorf("query %q missing %q", gotQuery, part)
		}
	}
}

func TestUpdateUser_EscapesKey(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"data":{"company_username":"a b"}}`))
	}, "tok")

	if _, err := c.UpdateUser(context.Background(), "a b", map[string]any{"department": "ops"}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if gotPath != "/api/users/a%20b" {
		t.Errorf("path = %q", gotPath)
	}
}
