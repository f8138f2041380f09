package entity

// Role represents the type of role a user can have in the system.
// It is unset until onboarding completes and immutable afterwards.
type Role string

const (
	// RoleClient indicates a loyalty-card holder.
	RoleClient Role = "client"
	// RoleBusiness indicates a stamp-granting business.
	RoleBusiness Role = "business"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleBusiness:
		return true
	default:
		return false
	}
}
