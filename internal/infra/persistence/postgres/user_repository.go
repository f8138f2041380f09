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

// userRepository implements the repository.UserRepository interface.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{
		db: db,
	}
}

// CreateUser persists a new user.
func (repo *userRepository) CreateUser(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WithDetails("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// FindUserByID retrieves a user by its unique ID.
func (repo *userRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by ID")
	}

	return toUserDomain(&userM), nil
}

// FindUserByEmail retrieves a user by email.
func (repo *userRepository) FindUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel

	if err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// UpdateUser persists profile changes for an existing user.
func (repo *userRepository) UpdateUser(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Select("name", "username", "role", "business_name", "business_category",
			"location", "city", "exact_address", "updated_at").
		Updates(userM)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update user")
	}

	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// UpdateQRMirror stores the active QR payload on the user row.
func (repo *userRepository) UpdateQRMirror(ctx context.Context, userID uuid.UUID, payload string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Update("qr_code", payload)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update qr mirror")
	}

	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// toUserDomain converts the GORM model to the domain entity.
func toUserDomain(userM *model.UserModel) *entity.User {
	return &entity.User{
		ID:               userM.ID,
		Email:            userM.Email,
		Name:             userM.Name,
		Username:         userM.Username,
		PasswordHash:     userM.PasswordHash,
		Role:             entity.Role(userM.Role),
		BusinessName:     userM.BusinessName,
		BusinessCategory: userM.BusinessCategory,
		Location:         userM.Location,
		City:             userM.City,
		ExactAddress:     userM.ExactAddress,
		QRCodeMirror:     userM.QRCode,
		CreatedAt:        userM.CreatedAt,
		UpdatedAt:        userM.UpdatedAt,
	}
}

// fromUserDomain converts the domain entity to the GORM model.
func fromUserDomain(user *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		Username:         user.Username,
		PasswordHash:     user.PasswordHash,
		Role:             user.Role.String(),
		BusinessName:     user.BusinessName,
		BusinessCategory: user.BusinessCategory,
		Location:         user.Location,
		City:             user.City,
		ExactAddress:     user.ExactAddress,
		QRCode:           user.QRCodeMirror,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}
