package session

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"C_SUITE", RoleCSuite},
		{"c_suite", RoleCSuite},
		{"  Department_Head ", RoleDepartmentHead},
		{"DEPARTMENT_MEMBER", RoleDepartmentMember},
		{"department_member", RoleDepartmentMember},
		{"intern", RoleDepartmentMember}, // unknown degrades to least privileged
		{"", RoleDepartmentMember},
	}

	for _, tt := range tests {
		if got := ParseRole(tt.raw); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRole_Privileged(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleCSuite, true},
		{RoleDepartmentHead, true},
		{RoleDepartmentMember, false},
	}

	for _, tt := range tests {
		if got := tt.role.Privileged(); got != tt.want {
			t.Errorf("%s.Privileged() = %v, want %v", tt.role, got, tt.want)
		}
	}
}
