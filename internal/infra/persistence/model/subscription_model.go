package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionModel is the GORM-specific struct for the 'subscriptions'
// table. The composite unique index guarantees at most one subscription per
// (client, business) pair even under concurrent scans.
type SubscriptionModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_pair"`
	BusinessID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_pair;index"`
	SubscribedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
