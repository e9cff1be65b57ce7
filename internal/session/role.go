package session

import "strings"

// Role is the closed set of RBAC levels the dashboard knows about.
type Role string

const (
	RoleCSuite           Role = "C_SUITE"
	RoleDepartmentHead   Role = "DEPARTMENT_HEAD"
	RoleDepartmentMember Role = "DEPARTMENT_MEMBER"
)

// ParseRole normalizes a backend role string to the closed enum. Comparison
// is case-insensitive; unknown or missing roles degrade to the least
// privileged level. This is the single ingestion point for role strings:
// nothing downstream re-parses raw role fields.
func ParseRole(raw string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleCSuite:
		return RoleCSuite
	case RoleDepartmentHead:
		return RoleDepartmentHead
	default:
		return RoleDepartmentMember
	}
}

// Privileged reports whether the role may reach subject-management views.
func (r Role) Privileged() bool {
	return r == RoleCSuite || r == RoleDepartmentHead
}
