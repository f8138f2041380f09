package entity

import (
	"time"

	"github.com/google/uuid"
)

// Subscription represents a client following a business. At most one exists
// per (client, business) pair; creation is idempotent and there is no
// unsubscribe flow.
type Subscription struct {
	ID           uuid.UUID `json:"id"`
	ClientID     uuid.UUID `json:"client_id"`
	BusinessID   uuid.UUID `json:"business_id"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// SubscriptionItem pairs a subscription with the identity of the user on
// the other side of the relationship.
type SubscriptionItem struct {
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	SubscribedAt   time.Time       `json:"subscribed_at"`
	OtherUser      *PublicIdentity `json:"other_user"`
}

// SubscriptionList is the role-dependent "other side" listing: businesses a
// client follows, or clients subscribed to a business.
type SubscriptionList struct {
	Role  Role               `json:"role"`
	Items []SubscriptionItem `json:"items"`
	Count int                `json:"count"`
}
