// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity in the system. A user is either a client
// collecting stamps or a business granting them; the business-specific
// fields stay empty for clients.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role,omitempty"` // empty until onboarding completes

	// Business-only attributes.
	BusinessName     string `json:"business_name,omitempty"`
	BusinessCategory string `json:"business_category,omitempty"`
	Location         string `json:"location,omitempty"`
	City             string `json:"city,omitempty"`
	ExactAddress     string `json:"exact_address,omitempty"`

	// QRCodeMirror holds a copy of the active QR payload as a fallback
	// read path when the registry row is missing.
	QRCodeMirror string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicIdentity is the subset of a user safe to show to the other party
// of a scan (the scanned business, or the stamped client).
type PublicIdentity struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name,omitempty"`
	Username     string    `json:"username,omitempty"`
	BusinessName string    `json:"business_name,omitempty"`
	Role         Role      `json:"role"`
}

// Public projects the user onto its shareable identity.
func (u *User) Public() PublicIdentity {
	return PublicIdentity{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		BusinessName: u.BusinessName,
		Role:         u.Role,
	}
}
