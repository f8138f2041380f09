package impl

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/service"
	"stampcard/internal/usecase"
)

func TestRewardService_CreateValidatesFields(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newRewardService()
	ctx := context.Background()

	business := env.createUser(t, entity.RoleBusiness)

	_, err := svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{Name: "", RequiredStamps: 5})
	assertAppErrorCode(t, err, "VALIDATION_FAILED")

	_, err = svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{Name: "Free Coffee", RequiredStamps: 0})
	assertAppErrorCode(t, err, "VALIDATION_FAILED")

	_, err = svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{
		Name:           "Free Coffee",
		RequiredStamps: 5,
		ValidUntil:     "not-a-date",
	})
	assertAppErrorCode(t, err, "VALIDATION_FAILED")

	reward, err := svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{
		Name:           "Free Coffee",
		Description:    "One espresso on the house",
		RequiredStamps: 5,
		ValidUntil:     "2099-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, business.ID, reward.BusinessID)
	assert.Equal(t, 5, reward.RequiredStamps)
}

func TestRewardService_UpdateAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newRewardService()
	ctx := context.Background()

	owner := env.createUser(t, entity.RoleBusiness)
	other := env.createUser(t, entity.RoleBusiness)

	reward, err := svc.CreateReward(ctx, owner.ID, usecase.CreateRewardInput{Name: "Free Coffee", RequiredStamps: 5})
	require.NoError(t, err)

	name := "Free Latte"
	stamps := 8
	updated, err := svc.UpdateReward(ctx, owner.ID, reward.ID, usecase.UpdateRewardInput{
		Name:           &name,
		RequiredStamps: &stamps,
	})
	require.NoError(t, err)
	assert.Equal(t, "Free Latte", updated.Name)
	assert.Equal(t, 8, updated.RequiredStamps)

	_, err = svc.UpdateReward(ctx, other.ID, reward.ID, usecase.UpdateRewardInput{Name: &name})
	assertAppErrorCode(t, err, "FORBIDDEN")

	err = svc.DeleteReward(ctx, other.ID, reward.ID)
	assertAppErrorCode(t, err, "FORBIDDEN")

	require.NoError(t, svc.DeleteReward(ctx, owner.ID, reward.ID))

	_, err = svc.UpdateReward(ctx, owner.ID, reward.ID, usecase.UpdateRewardInput{Name: &name})
	assert.ErrorIs(t, err, domainerrors.ErrRewardNotFound)
}

func TestRewardService_AggregatedProgress(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newRewardService()
	stampSvc := env.newStampService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	_, err := svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{Name: "Free Coffee", RequiredStamps: 5})
	require.NoError(t, err)

	// Accumulate also subscribes, which is what puts the card in the list.
	_, err = stampSvc.Accumulate(ctx, client.ID, business.ID, 3)
	require.NoError(t, err)

	cards, err := svc.AggregatedForClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, cards.Subscriptions, 1)

	card := cards.Subscriptions[0]
	assert.Equal(t, business.ID, card.Business.ID)
	assert.Equal(t, 3, card.TotalStamps)
	require.Len(t, card.Rewards, 1)
	assert.Equal(t, 3, card.Rewards[0].Progress)
	assert.False(t, card.Rewards[0].CanRedeem)

	_, err = stampSvc.Accumulate(ctx, client.ID, business.ID, 2)
	require.NoError(t, err)

	cards, err = svc.AggregatedForClient(ctx, client.ID)
	require.NoError(t, err)
	card = cards.Subscriptions[0]
	assert.Equal(t, 5, card.TotalStamps)
	assert.Equal(t, 5, card.Rewards[0].Progress)
	assert.True(t, card.Rewards[0].CanRedeem)

	// Progress caps at the requirement even when the balance overshoots.
	_, err = stampSvc.Accumulate(ctx, client.ID, business.ID, 4)
	require.NoError(t, err)

	cards, err = svc.AggregatedForClient(ctx, client.ID)
	require.NoError(t, err)
	card = cards.Subscriptions[0]
	assert.Equal(t, 9, card.TotalStamps)
	assert.Equal(t, 5, card.Rewards[0].Progress)
}

func TestRewardService_AggregatedSortsRedeemableFirst(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newRewardService()
	stampSvc := env.newStampService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	_, err := svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{Name: "Big Prize", RequiredStamps: 20})
	require.NoError(t, err)
	_, err = svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{Name: "Small Prize", RequiredStamps: 3})
	require.NoError(t, err)

	_, err = stampSvc.Accumulate(ctx, client.ID, business.ID, 4)
	require.NoError(t, err)

	cards, err := svc.AggregatedForClient(ctx, client.ID)
	require.NoError(t, err)
	rewards := cards.Subscriptions[0].Rewards
	require.Len(t, rewards, 2)
	assert.Equal(t, "Small Prize", rewards[0].Name)
	assert.True(t, rewards[0].CanRedeem)
	assert.False(t, rewards[1].CanRedeem)
}

func TestRewardService_RedeemChecksInOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newRewardService()
	stampSvc := env.newStampService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	_, err := svc.Redeem(ctx, client.ID, business.ID, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrRewardNotFound)

	reward, err := svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{Name: "Free Coffee", RequiredStamps: 5})
	require.NoError(t, err)

	// Naming the wrong business treats the reward as absent.
	otherBusiness := env.createUser(t, entity.RoleBusiness)
	_, err = svc.Redeem(ctx, client.ID, otherBusiness.ID, reward.ID)
	assert.ErrorIs(t, err, domainerrors.ErrRewardNotFound)

	_, err = svc.Redeem(ctx, client.ID, business.ID, reward.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotSubscribed)

	_, err = stampSvc.Accumulate(ctx, client.ID, business.ID, 3)
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, client.ID, business.ID, reward.ID)
	assertAppErrorCode(t, err, "INSUFFICIENT_STAMPS")

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "you need 5 stamps but only have 3", appErr.Details())

	expired, err := svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{
		Name:           "Old Promo",
		RequiredStamps: 2,
		ValidUntil:     "2000-01-01",
	})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, client.ID, business.ID, expired.ID)
	assert.ErrorIs(t, err, domainerrors.ErrRewardExpired)
}

func TestRewardService_RedeemDeductsAndRecords(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newRewardService()
	stampSvc := env.newStampService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	reward, err := svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{Name: "Free Coffee", RequiredStamps: 5})
	require.NoError(t, err)

	_, err = stampSvc.Accumulate(ctx, client.ID, business.ID, 7)
	require.NoError(t, err)

	card, err := svc.Redeem(ctx, client.ID, business.ID, reward.ID)
	require.NoError(t, err)

	// The returned aggregate already reflects the spent stamps.
	require.Len(t, card.Subscriptions, 1)
	assert.Equal(t, business.ID, card.Subscriptions[0].Business.ID)
	assert.Equal(t, 2, card.Subscriptions[0].TotalStamps)

	// Exactly the required stamps were spent.
	total, err := env.stampRepo.TotalStampsForPair(ctx, client.ID, business.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	assert.Len(t, env.publisher.eventsOfType(service.EventRewardRedeemed), 1)

	redemptions, err := env.redemptionRepo.FindRedemptionsByPair(ctx, client.ID, business.ID)
	require.NoError(t, err)
	require.Len(t, redemptions, 1)
	assert.Equal(t, reward.ID, redemptions[0].RewardID)

	// Redeeming again without enough balance fails.
	_, err = svc.Redeem(ctx, client.ID, business.ID, reward.ID)
	assertAppErrorCode(t, err, "INSUFFICIENT_STAMPS")
}

func TestRewardService_ListRedemptionsWithDetails(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newRewardService()
	stampSvc := env.newStampService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	reward, err := svc.CreateReward(ctx, business.ID, usecase.CreateRewardInput{Name: "Free Coffee", RequiredStamps: 2})
	require.NoError(t, err)

	_, err = stampSvc.Accumulate(ctx, client.ID, business.ID, 4)
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, client.ID, business.ID, reward.ID)
	require.NoError(t, err)

	details, err := svc.ListRedemptions(ctx, business.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].Client)
	assert.Equal(t, client.ID, details[0].Client.ID)
	require.NotNil(t, details[0].Reward)
	assert.Equal(t, "Free Coffee", details[0].Reward.Name)
}
