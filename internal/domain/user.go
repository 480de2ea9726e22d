package domain

import "time"

// Role enumerates the access levels of an account.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User is an account able to authenticate against the service.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
