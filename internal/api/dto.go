package api

// UserPayload is a monitored user record as the backend returns it. Role and
// username fields come in loose variants (`role_key` vs `role`, raw vs
// normalized username); callers resolve them through session.NewIdentity and
// scope.CanonicalKey rather than reading the raw fields directly.
type UserPayload struct {
	ID                  string `json:"_id,omitempty"`
	CompanyUsername     string `json:"company_username"`
	CompanyUsernameNorm string `json:"company_username_norm,omitempty"`
	FullName            string `json:"full_name,omitempty"`
	Email               string `json:"email,omitempty"`
	Department          string `json:"department,omitempty"`
	UserMacID           string `json:"user_mac_id,omitempty"`
	RoleKey             string `json:"role_key,omitempty"`
	Role                string `json:"role,omitempty"`
	IsActive            bool   `json:"is_active,omitempty"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  UserPayload `json:"user"`
}

// RegisterRequest creates a new account. Registration is for department
// members only; role assignment is a management operation.
type RegisterRequest struct {
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=4"`
	Department string `json:"department,omitempty"`
}

// CreateUserRequest adds a monitored user record.
type CreateUserRequest struct {
	CompanyUsername string `json:"company_username" validate:"required"`
	FullName        string `json:"full_name,omitempty"`
	Department      string `json:"department,omitempty"`
	UserMacID       string `json:"user_mac_id,omitempty"`
	RoleKey         string `json:"role_key,omitempty"`
}
