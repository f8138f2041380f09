package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/repository"
	"stampcard/internal/infra/persistence/model"
)

// rewardRepository implements the repository.RewardRepository interface.
type rewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository is the constructor for rewardRepository.
func NewRewardRepository(db *gorm.DB) repository.RewardRepository {
	return &rewardRepository{
		db: db,
	}
}

// CreateReward persists a new reward.
func (repo *rewardRepository) CreateReward(ctx context.Context, reward *entity.Reward) error {
	rewardM := fromRewardDomain(reward)

	if err := repo.db.WithContext(ctx).Create(rewardM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WithDetails("missing required reward information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create reward")
	}

	return nil
}

// FindRewardByID retrieves a reward by its unique ID.
func (repo *rewardRepository) FindRewardByID(ctx context.Context, id uuid.UUID) (*entity.Reward, error) {
	var rewardM model.RewardModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rewardM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRewardNotFound
		}

		return nil, errors.Wrap(err, "failed to find reward by ID")
	}

	return toRewardDomain(&rewardM), nil
}

// FindRewardsByBusiness retrieves all rewards of a business.
func (repo *rewardRepository) FindRewardsByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.Reward, error) {
	var rewardModels []*model.RewardModel

	if err := repo.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&rewardModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find rewards by business")
	}

	rewards := make([]*entity.Reward, 0, len(rewardModels))
	for _, rewardM := range rewardModels {
		rewards = append(rewards, toRewardDomain(rewardM))
	}

	return rewards, nil
}

// UpdateReward persists changes to an existing reward.
func (repo *rewardRepository) UpdateReward(ctx context.Context, reward *entity.Reward) error {
	rewardM := fromRewardDomain(reward)

	result := repo.db.WithContext(ctx).
		Model(&model.RewardModel{}).
		Where("id = ?", reward.ID).
		Select("name", "description", "required_stamps", "valid_until").
		Updates(rewardM)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update reward")
	}

	if result.RowsAffected == 0 {
		return repository.ErrRewardNotFound
	}

	return nil
}

// DeleteReward removes a reward permanently.
func (repo *rewardRepository) DeleteReward(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.RewardModel{})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete reward")
	}

	if result.RowsAffected == 0 {
		return repository.ErrRewardNotFound
	}

	return nil
}

// toRewardDomain converts the GORM model to the domain entity.
func toRewardDomain(rewardM *model.RewardModel) *entity.Reward {
	return &entity.Reward{
		ID:             rewardM.ID,
		BusinessID:     rewardM.BusinessID,
		Name:           rewardM.Name,
		Description:    rewardM.Description,
		RequiredStamps: rewardM.RequiredStamps,
		ValidUntil:     rewardM.ValidUntil,
		CreatedAt:      rewardM.CreatedAt,
	}
}

// fromRewardDomain converts the domain entity to the GORM model.
func fromRewardDomain(reward *entity.Reward) *model.RewardModel {
	return &model.RewardModel{
		ID:             reward.ID,
		BusinessID:     reward.BusinessID,
		Name:           reward.Name,
		Description:    reward.Description,
		RequiredStamps: reward.RequiredStamps,
		ValidUntil:     reward.ValidUntil,
		CreatedAt:      reward.CreatedAt,
	}
}
