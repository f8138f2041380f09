package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"stampcard/config"
	deliverycontext "stampcard/internal/delivery/context"
	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/repository"
	"stampcard/internal/domain/service"
	"stampcard/internal/errors"
	"stampcard/internal/usecase"
)

const defaultHistoryLimit = 50

// stampService implements the StampUsecase interface.
type stampService struct {
	txManager        repository.TransactionManager
	stampRepo        repository.StampRepository
	userRepo         repository.UserRepository
	publisher        service.EventPublisher
	maxGrantQuantity int
	logger           *slog.Logger
}

// StampServiceParams holds dependencies for StampService, injected by Fx.
type StampServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	StampRepo repository.StampRepository
	UserRepo  repository.UserRepository
	Publisher service.EventPublisher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewStampService creates a new stamp service instance.
func NewStampService(params StampServiceParams) usecase.StampUsecase {
	return &stampService{
		txManager:        params.TxManager,
		stampRepo:        params.StampRepo,
		userRepo:         params.UserRepo,
		publisher:        params.Publisher,
		maxGrantQuantity: params.Config.MaxGrantQuantity(),
		logger:           params.Logger,
	}
}

func (srv *stampService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Accumulate grants quantity stamps to a client, ensuring the subscription
// exists first so a grant to a passer-by pulls them into the card list.
func (srv *stampService) Accumulate(ctx context.Context, clientID, businessID uuid.UUID, quantity int) (*entity.GrantResult, error) {
	if quantity < 1 || quantity > srv.maxGrantQuantity {
		return nil, domainerrors.ErrInvalidQuantity
	}

	result := &entity.GrantResult{
		Success:       true,
		StampsGranted: quantity,
		ClientID:      clientID,
		BusinessID:    businessID,
	}

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if _, _, err := ensureSubscription(ctx, factory, clientID, businessID); err != nil {
			return err
		}

		_, total, err := grantToLedger(ctx, factory, clientID, businessID, quantity, time.Now())
		if err != nil {
			return err
		}

		result.TotalStamps = total

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.publishGranted(ctx, clientID, businessID, quantity)

	srv.log(ctx).Info("Stamps granted",
		slog.String("client_id", clientID.String()),
		slog.String("business_id", businessID.String()),
		slog.Int("quantity", quantity),
		slog.Int("total", result.TotalStamps))

	return result, nil
}

// GrantDailyBonus awards the single bonus stamp unless the pair was already
// granted today. A capped grant is a soft outcome, not an error.
func (srv *stampService) GrantDailyBonus(ctx context.Context, clientID, businessID uuid.UUID) (*entity.GrantResult, error) {
	result := &entity.GrantResult{
		ClientID:   clientID,
		BusinessID: businessID,
	}

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		granted, total, err := grantDailyBonusToLedger(ctx, factory, clientID, businessID, time.Now())
		if err != nil {
			return err
		}

		result.Success = granted
		result.TotalStamps = total
		if granted {
			result.StampsGranted = 1
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Success {
		srv.publishGranted(ctx, clientID, businessID, 1)
	}

	return result, nil
}

func (srv *stampService) publishGranted(ctx context.Context, clientID, businessID uuid.UUID, quantity int) {
	event := &service.LoyaltyEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       service.EventStampsGranted,
		ClientID:   clientID.String(),
		BusinessID: businessID.String(),
		Quantity:   quantity,
		OccurredAt: time.Now().UnixMilli(),
	}

	if err := srv.publisher.PublishLoyaltyEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish stamp event", slog.Any("error", err))
	}
}

// ClientStamps returns the client's ledger rows across all businesses.
func (srv *stampService) ClientStamps(ctx context.Context, clientID uuid.UUID) ([]*entity.Stamp, error) {
	stamps, err := srv.stampRepo.FindStampsByClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find stamps by client")
	}

	return stamps, nil
}

// BusinessHistory returns the most recent grants made by a business with
// client identities attached. A non-positive limit falls back to the
// default window.
func (srv *stampService) BusinessHistory(ctx context.Context, businessID uuid.UUID, limit int) ([]*entity.StampHistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	stamps, err := srv.stampRepo.FindRecentStampsByBusiness(ctx, businessID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find recent stamps by business")
	}

	entries := make([]*entity.StampHistoryEntry, 0, len(stamps))
	for _, stamp := range stamps {
		entry := &entity.StampHistoryEntry{Stamp: *stamp}

		client, err := srv.userRepo.FindUserByID(ctx, stamp.ClientID)
		if err == nil {
			identity := client.Public()
			entry.Client = &identity
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to load stamp client")
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
