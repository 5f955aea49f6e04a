package domain

type Role string

const (
	RoleParent      Role = "parent"
	RoleVendor      Role = "vendor"
	RoleSchoolAdmin Role = "school_admin"
	RoleOps         Role = "ops"
)

// IsAdmin reports whether the role may use the admin dashboard.
func (r Role) IsAdmin() bool {
	return r == RoleSchoolAdmin || r == RoleOps
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}
