// Package model contains the GORM-specific structs mapping domain entities
// to tables.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel is the GORM-specific struct for the 'users' table.
// QRCode mirrors the active QR payload as a fallback read path when the
// qr_codes row is missing.
type UserModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	Email            string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name             string    `gorm:"type:varchar(255)"`
	Username         string    `gorm:"type:varchar(255)"`
	PasswordHash     string    `gorm:"type:varchar(255);not null"`
	Role             string    `gorm:"type:varchar(16);index"`
	BusinessName     string    `gorm:"type:varchar(255)"`
	BusinessCategory string    `gorm:"type:varchar(255)"`
	Location         string    `gorm:"type:varchar(255)"`
	City             string    `gorm:"type:varchar(255)"`
	ExactAddress     string    `gorm:"type:varchar(512)"`
	QRCode           string    `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
