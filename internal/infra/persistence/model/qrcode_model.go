package model

import (
	"time"

	"github.com/google/uuid"
)

// QRCodeModel is the GORM-specific struct for the 'qr_codes' table.
// The unique owner index enforces the one-active-QR-per-owner rule;
// regeneration overwrites the row in place.
type QRCodeModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Code        string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Payload     string    `gorm:"type:text;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (QRCodeModel) TableName() string {
	return "qr_codes"
}
