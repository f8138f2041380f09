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

// redemptionRepository implements the repository.RedemptionRepository interface.
type redemptionRepository struct {
	db *gorm.DB
}

// NewRedemptionRepository is the constructor for redemptionRepository.
func NewRedemptionRepository(db *gorm.DB) repository.RedemptionRepository {
	return &redemptionRepository{
		db: db,
	}
}

// CreateRedemption appends a redemption record.
func (repo *redemptionRepository) CreateRedemption(ctx context.Context, redemption *entity.Redemption) error {
	redemptionM := fromRedemptionDomain(redemption)

	if err := repo.db.WithContext(ctx).Create(redemptionM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create redemption")
	}

	return nil
}

// FindRedemptionsByPair retrieves all redemptions of a client at one business.
func (repo *redemptionRepository) FindRedemptionsByPair(ctx context.Context, clientID, businessID uuid.UUID) ([]*entity.Redemption, error) {
	var redemptionModels []*model.RedemptionModel

	if err := repo.db.WithContext(ctx).
		Where("client_id = ? AND business_id = ?", clientID, businessID).
		Order("redeemed_at DESC").
		Find(&redemptionModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find redemptions by pair")
	}

	return toRedemptionDomainSlice(redemptionModels), nil
}

// FindRedemptionsByBusiness retrieves all redemptions at a business, newest first.
func (repo *redemptionRepository) FindRedemptionsByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.Redemption, error) {
	var redemptionModels []*model.RedemptionModel

	if err := repo.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("redeemed_at DESC").
		Find(&redemptionModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find redemptions by business")
	}

	return toRedemptionDomainSlice(redemptionModels), nil
}

func toRedemptionDomainSlice(redemptionModels []*model.RedemptionModel) []*entity.Redemption {
	redemptions := make([]*entity.Redemption, 0, len(redemptionModels))
	for _, redemptionM := range redemptionModels {
		redemptions = append(redemptions, toRedemptionDomain(redemptionM))
	}

	return redemptions
}

// toRedemptionDomain converts the GORM model to the domain entity.
func toRedemptionDomain(redemptionM *model.RedemptionModel) *entity.Redemption {
	return &entity.Redemption{
		ID:         redemptionM.ID,
		ClientID:   redemptionM.ClientID,
		BusinessID: redemptionM.BusinessID,
		RewardID:   redemptionM.RewardID,
		RedeemedAt: redemptionM.RedeemedAt,
	}
}

// fromRedemptionDomain converts the domain entity to the GORM model.
func fromRedemptionDomain(redemption *entity.Redemption) *model.RedemptionModel {
	return &model.RedemptionModel{
		ID:         redemption.ID,
		ClientID:   redemption.ClientID,
		BusinessID: redemption.BusinessID,
		RewardID:   redemption.RewardID,
		RedeemedAt: redemption.RedeemedAt,
	}
}
