package repository

import (
	"context"

	"stampcard/internal/domain/entity"
	"stampcard/internal/errors"

	"github.com/google/uuid"
)

var (
	// ErrSubscriptionNotFound is returned when a subscription is not found.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrDuplicateSubscription is returned when the unique pair index rejects
	// a concurrent insert.
	ErrDuplicateSubscription = errors.New("subscription already exists")
)

// SubscriptionRepository manages the client-business follow relationship.
type SubscriptionRepository interface {
	// CreateSubscription persists a new subscription.
	CreateSubscription(ctx context.Context, subscription *entity.Subscription) error

	// FindSubscriptionByPair retrieves the subscription for one
	// (client, business) pair.
	FindSubscriptionByPair(ctx context.Context, clientID, businessID uuid.UUID) (*entity.Subscription, error)

	// FindSubscriptionsByClient retrieves all subscriptions of a client,
	// newest first.
	FindSubscriptionsByClient(ctx context.Context, clientID uuid.UUID) ([]*entity.Subscription, error)

	// FindSubscriptionsByBusiness retrieves all subscriptions to a business,
	// newest first.
	FindSubscriptionsByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.Subscription, error)
}
