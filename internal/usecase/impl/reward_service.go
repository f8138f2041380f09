package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
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

// rewardService implements the RewardUsecase interface.
type rewardService struct {
	txManager        repository.TransactionManager
	rewardRepo       repository.RewardRepository
	redemptionRepo   repository.RedemptionRepository
	subscriptionRepo repository.SubscriptionRepository
	stampRepo        repository.StampRepository
	userRepo         repository.UserRepository
	publisher        service.EventPublisher
	logger           *slog.Logger
}

// RewardServiceParams holds dependencies for RewardService, injected by Fx.
type RewardServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	RewardRepo       repository.RewardRepository
	RedemptionRepo   repository.RedemptionRepository
	SubscriptionRepo repository.SubscriptionRepository
	StampRepo        repository.StampRepository
	UserRepo         repository.UserRepository
	Publisher        service.EventPublisher
	Logger           *slog.Logger
}

// NewRewardService creates a new reward service instance.
func NewRewardService(params RewardServiceParams) usecase.RewardUsecase {
	return &rewardService{
		txManager:        params.TxManager,
		rewardRepo:       params.RewardRepo,
		redemptionRepo:   params.RedemptionRepo,
		subscriptionRepo: params.SubscriptionRepo,
		stampRepo:        params.StampRepo,
		userRepo:         params.UserRepo,
		publisher:        params.Publisher,
		logger:           params.Logger,
	}
}

func (srv *rewardService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateReward creates a reward owned by the business.
func (srv *rewardService) CreateReward(ctx context.Context, businessID uuid.UUID, input usecase.CreateRewardInput) (*entity.Reward, error) {
	if err := validateRewardFields(input.Name, input.RequiredStamps, input.ValidUntil); err != nil {
		return nil, err
	}

	reward := &entity.Reward{
		ID:             uuid.New(),
		BusinessID:     businessID,
		Name:           input.Name,
		Description:    input.Description,
		RequiredStamps: input.RequiredStamps,
		ValidUntil:     input.ValidUntil,
		CreatedAt:      time.Now(),
	}

	if err := srv.rewardRepo.CreateReward(ctx, reward); err != nil {
		return nil, errors.Wrap(err, "failed to create reward")
	}

	srv.log(ctx).Info("Reward created",
		slog.String("reward_id", reward.ID.String()),
		slog.String("business_id", businessID.String()))

	return reward, nil
}

// UpdateReward patches reward fields. Only the owning business may update.
func (srv *rewardService) UpdateReward(ctx context.Context, businessID, rewardID uuid.UUID, input usecase.UpdateRewardInput) (*entity.Reward, error) {
	reward, err := srv.loadOwnedReward(ctx, businessID, rewardID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		reward.Name = *input.Name
	}
	if input.Description != nil {
		reward.Description = *input.Description
	}
	if input.RequiredStamps != nil {
		reward.RequiredStamps = *input.RequiredStamps
	}
	if input.ValidUntil != nil {
		reward.ValidUntil = *input.ValidUntil
	}

	if err := validateRewardFields(reward.Name, reward.RequiredStamps, reward.ValidUntil); err != nil {
		return nil, err
	}

	if err := srv.rewardRepo.UpdateReward(ctx, reward); err != nil {
		return nil, errors.Wrap(err, "failed to update reward")
	}

	return reward, nil
}

// DeleteReward removes a reward permanently. Redemption history stays.
func (srv *rewardService) DeleteReward(ctx context.Context, businessID, rewardID uuid.UUID) error {
	if _, err := srv.loadOwnedReward(ctx, businessID, rewardID); err != nil {
		return err
	}

	if err := srv.rewardRepo.DeleteReward(ctx, rewardID); err != nil {
		return errors.Wrap(err, "failed to delete reward")
	}

	return nil
}

// ListRewards returns all rewards of a business.
func (srv *rewardService) ListRewards(ctx context.Context, businessID uuid.UUID) ([]*entity.Reward, error) {
	rewards, err := srv.rewardRepo.FindRewardsByBusiness(ctx, businessID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find rewards by business")
	}

	return rewards, nil
}

func (srv *rewardService) loadOwnedReward(ctx context.Context, businessID, rewardID uuid.UUID) (*entity.Reward, error) {
	reward, err := srv.rewardRepo.FindRewardByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, repository.ErrRewardNotFound) {
			return nil, domainerrors.ErrRewardNotFound
		}

		return nil, errors.Wrap(err, "failed to find reward by id")
	}

	if reward.BusinessID != businessID {
		return nil, domainerrors.ErrForbidden.WithDetails("the reward belongs to another business")
	}

	return reward, nil
}

func validateRewardFields(name string, requiredStamps int, validUntil string) error {
	if name == "" {
		return domainerrors.ErrValidationFailed.WithDetails("reward name is required")
	}
	if requiredStamps < 1 {
		return domainerrors.ErrValidationFailed.WithDetails("at least one stamp is required")
	}
	if validUntil != "" {
		if _, err := time.Parse("2006-01-02", validUntil); err != nil {
			return domainerrors.ErrValidationFailed.WithDetails("valid_until must be a YYYY-MM-DD date")
		}
	}

	return nil
}

// AggregatedForClient builds the client's card view: one card per
// subscribed business with the stamp total and per-reward progress.
// Progress counts only stamps not consumed by prior redemptions of the same
// reward; rewards sort redeemable-now first, then by completion ratio.
func (srv *rewardService) AggregatedForClient(ctx context.Context, clientID uuid.UUID) (*entity.ClientSubscriptions, error) {
	subs, err := srv.subscriptionRepo.FindSubscriptionsByClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find subscriptions by client")
	}

	cards := make([]entity.BusinessCard, 0, len(subs))
	for _, sub := range subs {
		business, err := srv.userRepo.FindUserByID(ctx, sub.BusinessID)
		if err != nil {
			// Skip cards whose business disappeared.
			if errors.Is(err, repository.ErrUserNotFound) {
				continue
			}

			return nil, errors.Wrap(err, "failed to load card business")
		}

		card, err := srv.buildCard(ctx, clientID, business)
		if err != nil {
			return nil, err
		}

		cards = append(cards, *card)
	}

	return &entity.ClientSubscriptions{ClientID: clientID, Subscriptions: cards}, nil
}

func (srv *rewardService) buildCard(ctx context.Context, clientID uuid.UUID, business *entity.User) (*entity.BusinessCard, error) {
	totalStamps, err := srv.stampRepo.TotalStampsForPair(ctx, clientID, business.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to total stamps for pair")
	}

	rewards, err := srv.rewardRepo.FindRewardsByBusiness(ctx, business.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find rewards by business")
	}

	redemptions, err := srv.redemptionRepo.FindRedemptionsByPair(ctx, clientID, business.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find redemptions by pair")
	}

	redeemedCount := make(map[uuid.UUID]int, len(redemptions))
	for _, redemption := range redemptions {
		redeemedCount[redemption.RewardID]++
	}

	progress := make([]entity.RewardProgress, 0, len(rewards))
	for _, reward := range rewards {
		consumed := redeemedCount[reward.ID] * reward.RequiredStamps

		available := totalStamps - consumed
		if available < 0 {
			available = 0
		}

		p := available
		if p > reward.RequiredStamps {
			p = reward.RequiredStamps
		}

		progress = append(progress, entity.RewardProgress{
			RewardID:       reward.ID,
			Name:           reward.Name,
			Description:    reward.Description,
			RequiredStamps: reward.RequiredStamps,
			ValidUntil:     reward.ValidUntil,
			Progress:       p,
			CanRedeem:      p >= reward.RequiredStamps,
		})
	}

	sort.SliceStable(progress, func(i, j int) bool {
		if progress[i].CanRedeem != progress[j].CanRedeem {
			return progress[i].CanRedeem
		}

		ri := float64(progress[i].Progress) / float64(progress[i].RequiredStamps)
		rj := float64(progress[j].Progress) / float64(progress[j].RequiredStamps)

		return ri > rj
	})

	return &entity.BusinessCard{
		Business:    business.Public(),
		TotalStamps: totalStamps,
		Rewards:     progress,
	}, nil
}

// Redeem spends stamps on a reward: it records the redemption, deducts the
// required stamps from the ledger oldest grants first, and returns the
// client's refreshed card aggregate. A reward owned by a different business
// than the one named is treated as absent.
func (srv *rewardService) Redeem(ctx context.Context, clientID, businessID, rewardID uuid.UUID) (*entity.ClientSubscriptions, error) {
	var redemption *entity.Redemption

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		reward, err := factory.RewardRepo().FindRewardByID(ctx, rewardID)
		if err != nil {
			if errors.Is(err, repository.ErrRewardNotFound) {
				return domainerrors.ErrRewardNotFound
			}

			return errors.Wrap(err, "failed to find reward by id")
		}

		if reward.BusinessID != businessID {
			return domainerrors.ErrRewardNotFound
		}

		if _, err := factory.SubscriptionRepo().FindSubscriptionByPair(ctx, clientID, reward.BusinessID); err != nil {
			if errors.Is(err, repository.ErrSubscriptionNotFound) {
				return domainerrors.ErrNotSubscribed
			}

			return errors.Wrap(err, "failed to find subscription by pair")
		}

		rows, err := factory.StampRepo().FindStampsByPair(ctx, clientID, reward.BusinessID)
		if err != nil {
			return errors.Wrap(err, "failed to find stamps by pair")
		}

		totalStamps := 0
		for _, row := range rows {
			totalStamps += row.Quantity
		}

		if totalStamps < reward.RequiredStamps {
			return domainerrors.ErrInsufficientStamps.WithDetails(
				fmt.Sprintf("you need %d stamps but only have %d", reward.RequiredStamps, totalStamps))
		}

		if reward.Expired(time.Now()) {
			return domainerrors.ErrRewardExpired
		}

		redemption = &entity.Redemption{
			ID:         uuid.New(),
			ClientID:   clientID,
			BusinessID: reward.BusinessID,
			RewardID:   rewardID,
			RedeemedAt: time.Now(),
		}

		if err := factory.RedemptionRepo().CreateRedemption(ctx, redemption); err != nil {
			return errors.Wrap(err, "failed to create redemption")
		}

		return deductStamps(ctx, factory, rows, reward.RequiredStamps)
	})
	if err != nil {
		return nil, err
	}

	srv.publishRedeemed(ctx, redemption)

	srv.log(ctx).Info("Reward redeemed",
		slog.String("client_id", clientID.String()),
		slog.String("reward_id", rewardID.String()))

	return srv.AggregatedForClient(ctx, clientID)
}

// deductStamps consumes quantity from ledger rows in the order given,
// zeroing rows until the deduction is covered.
func deductStamps(ctx context.Context, factory repository.RepositoryFactory, rows []*entity.Stamp, quantity int) error {
	remaining := quantity
	for _, row := range rows {
		if remaining <= 0 {
			break
		}

		deduction := row.Quantity
		if deduction > remaining {
			deduction = remaining
		}

		if err := factory.StampRepo().SetStampQuantity(ctx, row.ID, row.Quantity-deduction); err != nil {
			return errors.Wrap(err, "failed to deduct stamps")
		}

		remaining -= deduction
	}

	return nil
}

func (srv *rewardService) publishRedeemed(ctx context.Context, redemption *entity.Redemption) {
	event := &service.LoyaltyEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       service.EventRewardRedeemed,
		ClientID:   redemption.ClientID.String(),
		BusinessID: redemption.BusinessID.String(),
		RewardID:   redemption.RewardID.String(),
		OccurredAt: time.Now().UnixMilli(),
	}

	if err := srv.publisher.PublishLoyaltyEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish redemption event", slog.Any("error", err))
	}
}

// ListRedemptions returns the business's redemption audit log with client
// and reward details attached.
func (srv *rewardService) ListRedemptions(ctx context.Context, businessID uuid.UUID) ([]*entity.RedemptionDetail, error) {
	redemptions, err := srv.redemptionRepo.FindRedemptionsByBusiness(ctx, businessID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find redemptions by business")
	}

	details := make([]*entity.RedemptionDetail, 0, len(redemptions))
	for _, redemption := range redemptions {
		detail := &entity.RedemptionDetail{Redemption: *redemption}

		client, err := srv.userRepo.FindUserByID(ctx, redemption.ClientID)
		if err == nil {
			identity := client.Public()
			detail.Client = &identity
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to load redemption client")
		}

		reward, err := srv.rewardRepo.FindRewardByID(ctx, redemption.RewardID)
		if err == nil {
			detail.Reward = reward
		} else if !errors.Is(err, repository.ErrRewardNotFound) {
			return nil, errors.Wrap(err, "failed to load redemption reward")
		}

		details = append(details, detail)
	}

	return details, nil
}
