package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TokenSource yields the current session credential, or "" when logged out.
// The client never caches the token; every request reads the live value so a
// logout is observable immediately.
type TokenSource func() string

// Config holds the connection settings for the monitoring backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the HTTP client for the monitoring backend REST contract.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a backend client. tokens may be nil for unauthenticated use.
func NewClient(cfg Config, tokens TokenSource) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tokens: tokens,
	}
}

func (c *Client) authenticateRequest(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
}

// get performs a GET and returns the raw response body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.cfg.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// send performs a request with a JSON body and returns the raw response body.
func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	c.authenticateRequest(req)

	log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", reqID).
		Msg("Backend request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("request_id", reqID).Msg("Backend request failed")
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", reqID).
		Msg("Backend response")

	if resp.StatusCode >= 400 {
		return nil, errorFromResponse(resp.StatusCode, body)
	}
	return body, nil
}

// unwrapData strips the standard `{data: ...}` envelope. Bodies without the
// envelope are returned as-is; the normalizers downstream are total either way.
func unwrapData(raw []byte) []byte {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		return env.Data
	}
	return raw
}

// decodeData unmarshals the `data` payload of a response into out.
func decodeData(raw []byte, out any) error {
	return json.Unmarshal(unwrapData(raw), out)
}
