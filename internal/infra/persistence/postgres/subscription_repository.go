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

// subscriptionRepository implements the repository.SubscriptionRepository interface.
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository is the constructor for subscriptionRepository.
func NewSubscriptionRepository(db *gorm.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{
		db: db,
	}
}

// CreateSubscription persists a new subscription. The unique pair index
// turns a concurrent double-subscribe into ErrDuplicateSubscription.
func (repo *subscriptionRepository) CreateSubscription(ctx context.Context, subscription *entity.Subscription) error {
	subscriptionM := fromSubscriptionDomain(subscription)

	if err := repo.db.WithContext(ctx).Create(subscriptionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateSubscription
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WithDetails("invalid client or business reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create subscription")
	}

	return nil
}

// FindSubscriptionByPair retrieves the subscription for one (client, business) pair.
func (repo *subscriptionRepository) FindSubscriptionByPair(ctx context.Context, clientID, businessID uuid.UUID) (*entity.Subscription, error) {
	var subscriptionM model.SubscriptionModel

	if err := repo.db.WithContext(ctx).
		Where("client_id = ? AND business_id = ?", clientID, businessID).
		First(&subscriptionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSubscriptionNotFound
		}

		return nil, errors.Wrap(err, "failed to find subscription by pair")
	}

	return toSubscriptionDomain(&subscriptionM), nil
}

// FindSubscriptionsByClient retrieves all subscriptions of a client, newest first.
func (repo *subscriptionRepository) FindSubscriptionsByClient(ctx context.Context, clientID uuid.UUID) ([]*entity.Subscription, error) {
	var subscriptionModels []*model.SubscriptionModel

	if err := repo.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("subscribed_at DESC").
		Find(&subscriptionModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find subscriptions by client")
	}

	subscriptions := make([]*entity.Subscription, 0, len(subscriptionModels))
	for _, subscriptionM := range subscriptionModels {
		subscriptions = append(subscriptions, toSubscriptionDomain(subscriptionM))
	}

	return subscriptions, nil
}

// FindSubscriptionsByBusiness retrieves all subscriptions to a business, newest first.
func (repo *subscriptionRepository) FindSubscriptionsByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.Subscription, error) {
	var subscriptionModels []*model.SubscriptionModel

	if err := repo.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("subscribed_at DESC").
		Find(&subscriptionModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find subscriptions by business")
	}

	subscriptions := make([]*entity.Subscription, 0, len(subscriptionModels))
	for _, subscriptionM := range subscriptionModels {
		subscriptions = append(subscriptions, toSubscriptionDomain(subscriptionM))
	}

	return subscriptions, nil
}

// toSubscriptionDomain converts the GORM model to the domain entity.
func toSubscriptionDomain(subscriptionM *model.SubscriptionModel) *entity.Subscription {
	return &entity.Subscription{
		ID:           subscriptionM.ID,
		ClientID:     subscriptionM.ClientID,
		BusinessID:   subscriptionM.BusinessID,
		SubscribedAt: subscriptionM.SubscribedAt,
	}
}

// fromSubscriptionDomain converts the domain entity to the GORM model.
func fromSubscriptionDomain(subscription *entity.Subscription) *model.SubscriptionModel {
	return &model.SubscriptionModel{
		ID:           subscription.ID,
		ClientID:     subscription.ClientID,
		BusinessID:   subscription.BusinessID,
		SubscribedAt: subscription.SubscribedAt,
	}
}
