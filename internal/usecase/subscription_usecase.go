package usecase

import (
	"context"

	"github.com/google/uuid"

	"stampcard/internal/domain/entity"
)

// SubscribeOptions tunes how a subscription is created.
type SubscribeOptions struct {
	// GrantDailyBonus awards one bonus stamp alongside the subscription,
	// capped at one per business per calendar day.
	GrantDailyBonus bool
}

// SubscriptionUsecase manages client-business subscriptions.
type SubscriptionUsecase interface {
	// Subscribe links a client to a business. Repeat calls return the
	// existing subscription with AlreadySubscribed set instead of failing.
	Subscribe(ctx context.Context, clientID, businessID uuid.UUID, opts SubscribeOptions) (*entity.SubscribeResult, error)

	// ListForUser returns the user's subscriptions from their side of the
	// relation: businesses for a client, subscribers for a business.
	ListForUser(ctx context.Context, userID uuid.UUID) (*entity.SubscriptionList, error)

	// ListSubscribers returns the clients subscribed to a business.
	ListSubscribers(ctx context.Context, businessID uuid.UUID) (*entity.SubscriptionList, error)
}
