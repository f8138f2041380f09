package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/repository"
	"stampcard/internal/infra/persistence/model"
)

// stampRepository implements the repository.StampRepository interface.
type stampRepository struct {
	db *gorm.DB
}

// NewStampRepository is the constructor for stampRepository.
func NewStampRepository(db *gorm.DB) repository.StampRepository {
	return &stampRepository{
		db: db,
	}
}

// CreateStamp persists a new ledger row. The unique pair index rejects a
// second row for the same (client, business) pair.
func (repo *stampRepository) CreateStamp(ctx context.Context, stamp *entity.Stamp) error {
	stampM := fromStampDomain(stamp)

	if err := repo.db.WithContext(ctx).Create(stampM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WithDetails("ledger row already exists for this pair")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create stamp row")
	}

	return nil
}

// FindStampByPair retrieves the ledger row for one (client, business) pair.
func (repo *stampRepository) FindStampByPair(ctx context.Context, clientID, businessID uuid.UUID) (*entity.Stamp, error) {
	var stampM model.StampModel

	if err := repo.db.WithContext(ctx).
		Where("client_id = ? AND business_id = ?", clientID, businessID).
		First(&stampM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrStampNotFound
		}

		return nil, errors.Wrap(err, "failed to find stamp by pair")
	}

	return toStampDomain(&stampM), nil
}

// FindStampsByPair retrieves all ledger rows for a pair, oldest grant first.
func (repo *stampRepository) FindStampsByPair(ctx context.Context, clientID, businessID uuid.UUID) ([]*entity.Stamp, error) {
	var stampModels []*model.StampModel

	if err := repo.db.WithContext(ctx).
		Where("client_id = ? AND business_id = ?", clientID, businessID).
		Order("granted_at ASC").
		Find(&stampModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find stamps by pair")
	}

	return toStampDomainSlice(stampModels), nil
}

// FindStampsByClient retrieves all ledger rows of a client across businesses.
func (repo *stampRepository) FindStampsByClient(ctx context.Context, clientID uuid.UUID) ([]*entity.Stamp, error) {
	var stampModels []*model.StampModel

	if err := repo.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("granted_at DESC").
		Find(&stampModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find stamps by client")
	}

	return toStampDomainSlice(stampModels), nil
}

// AddStampQuantity accumulates quantity onto a ledger row and refreshes its
// grant timestamp in one statement, so concurrent grants cannot lose
// updates.
func (repo *stampRepository) AddStampQuantity(ctx context.Context, id uuid.UUID, quantity int, grantedAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.StampModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"granted_at": grantedAt,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to add stamp quantity")
	}

	if result.RowsAffected == 0 {
		return repository.ErrStampNotFound
	}

	return nil
}

// SetStampQuantity overwrites a row's quantity without touching the grant
// timestamp.
func (repo *stampRepository) SetStampQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.StampModel{}).
		Where("id = ?", id).
		Update("quantity", quantity)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to set stamp quantity")
	}

	if result.RowsAffected == 0 {
		return repository.ErrStampNotFound
	}

	return nil
}

// TotalStampsForPair sums all ledger quantities for a pair.
func (repo *stampRepository) TotalStampsForPair(ctx context.Context, clientID, businessID uuid.UUID) (int, error) {
	var total int64

	if err := repo.db.WithContext(ctx).
		Model(&model.StampModel{}).
		Where("client_id = ? AND business_id = ?", clientID, businessID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, errors.Wrap(err, "failed to total stamps for pair")
	}

	return int(total), nil
}

// FindRecentStampsByBusiness retrieves the most recent grants of a business.
func (repo *stampRepository) FindRecentStampsByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]*entity.Stamp, error) {
	var stampModels []*model.StampModel

	if err := repo.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("granted_at DESC").
		Limit(limit).
		Find(&stampModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find recent stamps by business")
	}

	return toStampDomainSlice(stampModels), nil
}

func toStampDomainSlice(stampModels []*model.StampModel) []*entity.Stamp {
	stamps := make([]*entity.Stamp, 0, len(stampModels))
	for _, stampM := range stampModels {
		stamps = append(stamps, toStampDomain(stampM))
	}

	return stamps
}

// toStampDomain converts the GORM model to the domain entity.
func toStampDomain(stampM *model.StampModel) *entity.Stamp {
	return &entity.Stamp{
		ID:         stampM.ID,
		ClientID:   stampM.ClientID,
		BusinessID: stampM.BusinessID,
		Quantity:   stampM.Quantity,
		GrantedAt:  stampM.GrantedAt,
	}
}

// fromStampDomain converts the domain entity to the GORM model.
func fromStampDomain(stamp *entity.Stamp) *model.StampModel {
	return &model.StampModel{
		ID:         stamp.ID,
		ClientID:   stamp.ClientID,
		BusinessID: stamp.BusinessID,
		Quantity:   stamp.Quantity,
		GrantedAt:  stamp.GrantedAt,
	}
}
