package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/repository"
	"stampcard/internal/infra/persistence/model"
)

// qrCodeRepository implements the repository.QRCodeRepository interface.
type qrCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository is the constructor for qrCodeRepository.
func NewQRCodeRepository(db *gorm.DB) repository.QRCodeRepository {
	return &qrCodeRepository{
		db: db,
	}
}

// UpsertByOwner creates or overwrites the owner's registration in place.
// The conflict target is the unique owner index, so regeneration replaces
// code and payload atomically and the previous code stops resolving.
func (repo *qrCodeRepository) UpsertByOwner(ctx context.Context, qr *entity.QRCode) error {
	qrM := fromQRCodeDomain(qr)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "payload", "updated_at"}),
		}).
		Create(qrM).Error
	if err != nil {
		// The freshly generated code may collide with another owner's code.
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WithDetails("generated code is already in use")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert qr registration")
	}

	return nil
}

// FindByOwner retrieves the active registration for an owner.
func (repo *qrCodeRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*entity.QRCode, error) {
	var qrM model.QRCodeModel

	if err := repo.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		First(&qrM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrQRCodeNotFound
		}

		return nil, errors.Wrap(err, "failed to find qr by owner")
	}

	return toQRCodeDomain(&qrM), nil
}

// FindByCode resolves a short code to its registration.
func (repo *qrCodeRepository) FindByCode(ctx context.Context, code string) (*entity.QRCode, error) {
	var qrM model.QRCodeModel

	if err := repo.db.WithContext(ctx).
		Where("code = ?", code).
		First(&qrM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrQRCodeNotFound
		}

		return nil, errors.Wrap(err, "failed to find qr by code")
	}

	return toQRCodeDomain(&qrM), nil
}

// toQRCodeDomain converts the GORM model to the domain entity.
func toQRCodeDomain(qrM *model.QRCodeModel) *entity.QRCode {
	return &entity.QRCode{
		ID:          qrM.ID,
		Code:        qrM.Code,
		OwnerUserID: qrM.OwnerUserID,
		Payload:     qrM.Payload,
		CreatedAt:   qrM.CreatedAt,
		UpdatedAt:   qrM.UpdatedAt,
	}
}

// fromQRCodeDomain converts the domain entity to the GORM model.
func fromQRCodeDomain(qr *entity.QRCode) *model.QRCodeModel {
	return &model.QRCodeModel{
		ID:          qr.ID,
		Code:        qr.Code,
		OwnerUserID: qr.OwnerUserID,
		Payload:     qr.Payload,
		CreatedAt:   qr.CreatedAt,
		UpdatedAt:   qr.UpdatedAt,
	}
}
