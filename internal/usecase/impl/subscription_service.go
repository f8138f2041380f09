package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	deliverycontext "stampcard/internal/delivery/context"
	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/repository"
	"stampcard/internal/domain/service"
	"stampcard/internal/errors"
	"stampcard/internal/usecase"
)

// subscriptionService implements the SubscriptionUsecase interface.
type subscriptionService struct {
	txManager        repository.TransactionManager
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	publisher        service.EventPublisher
	logger           *slog.Logger
}

// SubscriptionServiceParams holds dependencies for SubscriptionService, injected by Fx.
type SubscriptionServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	SubscriptionRepo repository.SubscriptionRepository
	UserRepo         repository.UserRepository
	Publisher        service.EventPublisher
	Logger           *slog.Logger
}

// NewSubscriptionService creates a new subscription service instance.
func NewSubscriptionService(params SubscriptionServiceParams) usecase.SubscriptionUsecase {
	return &subscriptionService{
		txManager:        params.TxManager,
		subscriptionRepo: params.SubscriptionRepo,
		userRepo:         params.UserRepo,
		publisher:        params.Publisher,
		logger:           params.Logger,
	}
}

func (srv *subscriptionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Subscribe links a client to a business, idempotently. With the daily
// bonus enabled the subscription still succeeds when the bonus is capped,
// but the result reports Success=false so the caller can tell the scan
// earned nothing today.
func (srv *subscriptionService) Subscribe(ctx context.Context, clientID, businessID uuid.UUID, opts usecase.SubscribeOptions) (*entity.SubscribeResult, error) {
	result := &entity.SubscribeResult{
		Success:    true,
		ClientID:   clientID,
		BusinessID: businessID,
	}

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		subscriptionID, alreadySubscribed, err := ensureSubscription(ctx, factory, clientID, businessID)
		if err != nil {
			return err
		}

		result.SubscriptionID = subscriptionID
		result.AlreadySubscribed = alreadySubscribed

		if opts.GrantDailyBonus {
			granted, _, err := grantDailyBonusToLedger(ctx, factory, clientID, businessID, time.Now())
			if err != nil {
				return err
			}

			result.Success = granted
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadySubscribed {
		srv.publishCreated(ctx, result)
	}

	return result, nil
}

func (srv *subscriptionService) publishCreated(ctx context.Context, result *entity.SubscribeResult) {
	event := &service.LoyaltyEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       service.EventSubscriptionCreated,
		ClientID:   result.ClientID.String(),
		BusinessID: result.BusinessID.String(),
		OccurredAt: time.Now().UnixMilli(),
	}

	if err := srv.publisher.PublishLoyaltyEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish subscription event", slog.Any("error", err))
	}
}

// ListForUser lists the user's subscriptions from their own side: followed
// businesses for a client, subscribed clients for a business. Users without
// a role yet get an empty list.
func (srv *subscriptionService) ListForUser(ctx context.Context, userID uuid.UUID) (*entity.SubscriptionList, error) {
	user, err := srv.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	switch user.Role {
	case entity.RoleClient:
		subs, err := srv.subscriptionRepo.FindSubscriptionsByClient(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to find subscriptions by client")
		}

		return srv.buildList(ctx, entity.RoleClient, subs, func(s *entity.Subscription) uuid.UUID { return s.BusinessID })
	case entity.RoleBusiness:
		subs, err := srv.subscriptionRepo.FindSubscriptionsByBusiness(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to find subscriptions by business")
		}

		return srv.buildList(ctx, entity.RoleBusiness, subs, func(s *entity.Subscription) uuid.UUID { return s.ClientID })
	default:
		return &entity.SubscriptionList{Role: user.Role, Items: []entity.SubscriptionItem{}, Count: 0}, nil
	}
}

// ListSubscribers lists the clients subscribed to a business.
func (srv *subscriptionService) ListSubscribers(ctx context.Context, businessID uuid.UUID) (*entity.SubscriptionList, error) {
	subs, err := srv.subscriptionRepo.FindSubscriptionsByBusiness(ctx, businessID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find subscriptions by business")
	}

	return srv.buildList(ctx, entity.RoleBusiness, subs, func(s *entity.Subscription) uuid.UUID { return s.ClientID })
}

// buildList attaches the identity of the user on the other side of each
// subscription. Subscriptions whose counterpart no longer exists keep a nil
// OtherUser instead of failing the whole listing.
func (srv *subscriptionService) buildList(ctx context.Context, role entity.Role, subs []*entity.Subscription, otherSide func(*entity.Subscription) uuid.UUID) (*entity.SubscriptionList, error) {
	items := make([]entity.SubscriptionItem, 0, len(subs))
	for _, sub := range subs {
		item := entity.SubscriptionItem{
			SubscriptionID: sub.ID,
			SubscribedAt:   sub.SubscribedAt,
		}

		other, err := srv.userRepo.FindUserByID(ctx, otherSide(sub))
		if err == nil {
			identity := other.Public()
			item.OtherUser = &identity
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to load subscription counterpart")
		}

		items = append(items, item)
	}

	return &entity.SubscriptionList{Role: role, Items: items, Count: len(items)}, nil
}
