package repository

import (
	"context"

	"stampcard/internal/domain/entity"
	"stampcard/internal/errors"

	"github.com/google/uuid"
)

// ErrRewardNotFound is returned when no reward matches the lookup.
var ErrRewardNotFound = errors.New("reward not found")

// RewardRepository manages the rewards owned by businesses.
type RewardRepository interface {
	// CreateReward persists a new reward.
	CreateReward(ctx context.Context, reward *entity.Reward) error

	// FindRewardByID retrieves a reward by its unique ID.
	FindRewardByID(ctx context.Context, id uuid.UUID) (*entity.Reward, error)

	// FindRewardsByBusiness retrieves all rewards of a business.
	FindRewardsByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.Reward, error)

	// UpdateReward persists changes to an existing reward.
	UpdateReward(ctx context.Context, reward *entity.Reward) error

	// DeleteReward removes a reward permanently. There is no soft delete.
	DeleteReward(ctx context.Context, id uuid.UUID) error
}

// RedemptionRepository manages the append-only redemption audit log.
type RedemptionRepository interface {
	// CreateRedemption appends a redemption record.
	CreateRedemption(ctx context.Context, redemption *entity.Redemption) error

	// FindRedemptionsByPair retrieves all redemptions of a client at one
	// business.
	FindRedemptionsByPair(ctx context.Context, clientID, businessID uuid.UUID) ([]*entity.Redemption, error)

	// FindRedemptionsByBusiness retrieves all redemptions at a business,
	// newest first.
	FindRedemptionsByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.Redemption, error)
}
