// Package guard decides whether a requested dashboard view may be entered.
// Decide is a pure function over snapshots of the auth session and the
// selection scope; it holds no state and must be re-evaluated on every
// navigation attempt and whenever either store changes.
package guard

import (
	"strings"

	"insightwatch/internal/session"
)

// DecisionKind enumerates the possible access outcomes.
type DecisionKind int

const (
	// Allow lets the view mount.
	Allow DecisionKind = iota
	// RedirectLogin sends an unauthenticated caller to the login view,
	// carrying the originally requested path for post-login return.
	RedirectLogin
	// RedirectScopeRequired sends the caller to the subject picker because
	// the view needs an active selected subject.
	RedirectScopeRequired
	// AccessDenied keeps the caller on the page but renders a denial state:
	// authenticated, wrong role. Distinct from wrong auth on purpose.
	AccessDenied
)

// Decision is the outcome of one access check.
type Decision struct {
	Kind   DecisionKind
	From   string // RedirectLogin: the path originally requested
	Target string // RedirectScopeRequired: where to go instead
}

// Snapshot captures the store state a decision is made over.
type Snapshot struct {
	Authenticated bool
	HasSelection  bool
	Role          session.Role
}

// PathSubjectPicker is the redirect target for scope-required views.
const PathSubjectPicker = "/dashboard/users"

// scopedPaths require an active selected subject. This is the
// selection-based policy; a subject picked on the detail view stays active
// for all of them until logout.
var scopedPaths = []string{
	"/dashboard/logs",
	"/dashboard/screenshots",
	"/dashboard/insights",
}

func isProtected(path string) bool {
	return path == "/dashboard" || strings.HasPrefix(path, "/dashboard/")
}

func isScoped(path string) bool {
	for _, p := range scopedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// isPrivileged matches the subject-management list view. Detail views under
// it carry their own subject and stay reachable for every role.
func isPrivileged(path string) bool {
	return path == PathSubjectPicker
}

// Decide evaluates access for a requested path. Precedence: authentication,
// then selection scope, then role.
func Decide(s Snapshot, path string) Decision {
	if !isProtected(path) {
		return Decision{Kind: Allow}
	}

	if !s.Authenticated {
		return Decision{Kind: RedirectLogin, From: path}
	}

	if isScoped(path) && !s.HasSelection {
		return Decision{Kind: RedirectScopeRequired, Target: PathSubjectPicker}
	}

	if isPrivileged(path) && !s.Role.Privileged() {
		return Decision{Kind: AccessDenied}
	}

	return Decision{Kind: Allow}
}
