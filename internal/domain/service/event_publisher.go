package service

import (
	"context"
)

// Loyalty event types carried on the wire.
const (
	EventSubscriptionCreated = "subscription.created"
	EventStampsGranted       = "stamps.granted"
	EventRewardRedeemed      = "reward.redeemed"
)

// LoyaltyEvent represents a loyalty-card event published for async consumers
// (analytics, notification fan-out).
type LoyaltyEvent struct {
	RequestID  string `json:"request_id,omitempty"` // For distributed tracing
	Type       string `json:"type"`
	ClientID   string `json:"client_id"`
	BusinessID string `json:"business_id"`
	Quantity   int    `json:"quantity,omitempty"`
	RewardID   string `json:"reward_id,omitempty"`
	OccurredAt int64  `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishLoyaltyEvent publishes a loyalty event for async processing
	PublishLoyaltyEvent(ctx context.Context, event *LoyaltyEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
