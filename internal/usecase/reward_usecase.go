package usecase

import (
	"context"

	"github.com/google/uuid"

	"stampcard/internal/domain/entity"
)

// --- Input DTOs ---

// CreateRewardInput defines the data required to create a reward.
type CreateRewardInput struct {
	Name           string
	Description    string
	RequiredStamps int
	ValidUntil     string // YYYY-MM-DD, empty means no expiry
}

// UpdateRewardInput carries reward fields to patch. Nil fields are left
// untouched.
type UpdateRewardInput struct {
	Name           *string
	Description    *string
	RequiredStamps *int
	ValidUntil     *string
}

// RewardUsecase manages business rewards and client redemptions.
type RewardUsecase interface {
	CreateReward(ctx context.Context, businessID uuid.UUID, input CreateRewardInput) (*entity.Reward, error)
	UpdateReward(ctx context.Context, businessID, rewardID uuid.UUID, input UpdateRewardInput) (*entity.Reward, error)
	DeleteReward(ctx context.Context, businessID, rewardID uuid.UUID) error
	ListRewards(ctx context.Context, businessID uuid.UUID) ([]*entity.Reward, error)

	// AggregatedForClient returns one card per subscribed business with the
	// client's available stamps and per-reward progress. Cards that can
	// redeem something sort first.
	AggregatedForClient(ctx context.Context, clientID uuid.UUID) (*entity.ClientSubscriptions, error)

	// Redeem spends stamps on a reward of the given business, recording the
	// redemption and deducting the required stamps oldest grants first. It
	// returns the client's refreshed card aggregate.
	Redeem(ctx context.Context, clientID, businessID, rewardID uuid.UUID) (*entity.ClientSubscriptions, error)

	// ListRedemptions returns redemptions recorded against a business,
	// newest first, with client and reward details.
	ListRedemptions(ctx context.Context, businessID uuid.UUID) ([]*entity.RedemptionDetail, error)
}
