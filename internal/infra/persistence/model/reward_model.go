package model

import (
	"time"

	"github.com/google/uuid"
)

// RewardModel is the GORM-specific struct for the 'rewards' table.
// ValidUntil stays a plain date string; an empty value means no expiry.
type RewardModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	BusinessID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Description    string    `gorm:"type:text"`
	RequiredStamps int       `gorm:"not null"`
	ValidUntil     string    `gorm:"type:varchar(10)"`
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (RewardModel) TableName() string {
	return "rewards"
}
