package model

import (
	"time"

	"github.com/google/uuid"
)

// StampModel is the GORM-specific struct for the 'stamps' table. One ledger
// row per (client, business) pair, patched in place on every grant; the
// composite unique index hardens the single-row invariant the application
// relies on.
type StampModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stamps_pair"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stamps_pair;index"`
	Quantity   int       `gorm:"not null"`
	GrantedAt  time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (StampModel) TableName() string {
	return "stamps"
}
