package guard

import (
	"testing"

	"insightwatch/internal/session"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		path string
		want DecisionKind
	}{
		{
			"unauthenticated protected path",
			Snapshot{},
			"/dashboard/logs",
			RedirectLogin,
		},
		{
			"authenticated without selection on scoped view",
			Snapshot{Authenticated: true, Role: session.RoleCSuite},
			"/dashboard/insights",
			RedirectScopeRequired,
		},
		{
			"member on subject management",
			Snapshot{Authenticated: true, HasSelection: true, Role: session.RoleDepartmentMember},
			"/dashboard/users",
			AccessDenied,
		},
		{
			"c-suite on subject management",
			Snapshot{Authenticated: true, Role: session.RoleCSuite},
			"/dashboard/users",
			Allow,
		},
		{
			"department head on subject management",
			Snapshot{Authenticated: true, Role: session.RoleDepartmentHead},
			"/dashboard/users",
			Allow,
		},
		{
			"member on subject detail",
			Snapshot{Authenticated: true, Role: session.RoleDepartmentMember},
			"/dashboard/users/jdoe",
			Allow,
		},
		{
			"scoped view with selection",
			Snapshot{Authenticated: true, HasSelection: true, Role: session.RoleDepartmentMember},
			"/dashboard/screenshots",
			Allow,
		},
		{
			"overview needs auth only",
			Snapshot{Authenticated: true, Role: session.RoleDepartmentMember},
			"/dashboard/overview",
			Allow,
		},
		{
			"public path unauthenticated",
			Snapshot{},
			"/login",
			Allow,
		},
		{
			"landing page",
			Snapshot{},
			"/",
			Allow,
		},
		{
			"dashboard root unauthenticated",
			Snapshot{},
			"/dashboard",
			RedirectLogin,
		},
		{
			"scoped subpath without selection",
			Snapshot{Authenticated: true, Role: session.RoleDepartmentHead},
			"/dashboard/logs/recent",
			RedirectScopeRequired,
		},
	}

	for _, tt := range tests {
		got := Decide(tt.snap, tt.path)
		if got.Kind != tt.want {
			t.Errorf("%s: Decide(%+v, %q).Kind = %v, want %v", tt.name, tt.snap, tt.path, got.Kind, tt.want)
		}
	}
}

func TestDecide_RedirectCarriesContext(t *testing.T) {
	login := Decide(Snapshot{}, "/dashboard/logs")
	if login.From != "/dashboard/logs" {
		t.Errorf("RedirectLogin.From = %q, want the requested path", login.From)
	}

	scoped := Decide(Snapshot{Authenticated: true, Role: session.RoleCSuite}, "/dashboard/insights")
	if scoped.Target != PathSubjectPicker {
		t.Errorf("RedirectScopeRequired.Target = %q, want %q", scoped.Target, PathSubjectPicker)
	}
}

func TestDecide_AuthBeforeScope(t *testing.T) {
	// An unauthenticated caller on a scoped view gets the login redirect,
	// not the scope redirect.
	got := Decide(Snapshot{HasSelection: false}, "/dashboard/insights")
	if got.Kind != RedirectLogin {
		t.Errorf("Kind = %v, want RedirectLogin", got.Kind)
	}
}
