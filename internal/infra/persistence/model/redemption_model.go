package model

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionModel is the GORM-specific struct for the 'redemptions' table,
// an append-only audit log. Rows survive reward deletion, so RewardID
// carries no foreign key constraint.
type RedemptionModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;index"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
	RewardID   uuid.UUID `gorm:"type:uuid;not null;index"`
	RedeemedAt time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (RedemptionModel) TableName() string {
	return "redemptions"
}
