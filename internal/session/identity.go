package session

import (
	"github.com/golang-jwt/jwt/v5"

	"insightwatch/internal/api"
)

// Identity is the authenticated actor derived from the session credential.
type Identity struct {
	Subject    string `json:"subject"`
	Email      string `json:"email,omitempty"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// NewIdentity builds an Identity from a backend account payload. This is the
// one place the loose `role_key` vs `role` and raw vs normalized username
// variants are resolved.
func NewIdentity(u *api.UserPayload) Identity {
	if u == nil {
		return Identity{Role: RoleDepartmentMember}
	}

	subject := u.CompanyUsernameNorm
	if subject == "" {
		subject = u.CompanyUsername
	}

	rawRole := u.RoleKey
	if rawRole == "" {
		rawRole = u.Role
	}

	return Identity{
		Subject:    subject,
		Email:      u.Email,
		Role:       ParseRole(rawRole),
		Department: u.Department,
	}
}

// identityFromToken rebuilds an Identity from the credential's JWT claims
// without signature validation; the backend validated the token when it
// issued it and revalidates it on every request. A token that does not parse
// yields ok=false and the identity is fetched lazily instead.
func identityFromToken(token string) (Identity, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, false
	}

	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := claims[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}

	return Identity{
		Subject:    str("company_username_norm", "company_username", "sub"),
		Email:      str("email"),
		Role:       ParseRole(str("role_key", "role")),
		Department: str("department"),
	}, true
}
