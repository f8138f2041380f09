package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stampcard/internal/domain/entity"
	"stampcard/internal/domain/service"
	"stampcard/internal/usecase"
)

func TestSubscriptionService_SubscribeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newSubscriptionService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	first, err := svc.Subscribe(ctx, client.ID, business.ID, usecase.SubscribeOptions{})
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.False(t, first.AlreadySubscribed)

	second, err := svc.Subscribe(ctx, client.ID, business.ID, usecase.SubscribeOptions{})
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.True(t, second.AlreadySubscribed)
	assert.Equal(t, first.SubscriptionID, second.SubscriptionID)

	// Only the first link publishes an event.
	assert.Len(t, env.publisher.eventsOfType(service.EventSubscriptionCreated), 1)
}

func TestSubscriptionService_SubscribeWithDailyBonus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newSubscriptionService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	first, err := svc.Subscribe(ctx, client.ID, business.ID, usecase.SubscribeOptions{GrantDailyBonus: true})
	require.NoError(t, err)
	assert.True(t, first.Success)

	// Capped today: the subscription holds but Success reports the missed
	// bonus.
	second, err := svc.Subscribe(ctx, client.ID, business.ID, usecase.SubscribeOptions{GrantDailyBonus: true})
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.True(t, second.AlreadySubscribed)

	total, err := env.stampRepo.TotalStampsForPair(ctx, client.ID, business.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSubscriptionService_ListForUserBySide(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newSubscriptionService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	businessA := env.createUser(t, entity.RoleBusiness)
	businessB := env.createUser(t, entity.RoleBusiness)

	_, err := svc.Subscribe(ctx, client.ID, businessA.ID, usecase.SubscribeOptions{})
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, client.ID, businessB.ID, usecase.SubscribeOptions{})
	require.NoError(t, err)

	clientList, err := svc.ListForUser(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleClient, clientList.Role)
	assert.Equal(t, 2, clientList.Count)
	for _, item := range clientList.Items {
		require.NotNil(t, item.OtherUser)
		assert.Equal(t, entity.RoleBusiness, item.OtherUser.Role)
	}

	businessList, err := svc.ListForUser(ctx, businessA.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBusiness, businessList.Role)
	assert.Equal(t, 1, businessList.Count)
	require.NotNil(t, businessList.Items[0].OtherUser)
	assert.Equal(t, client.ID, businessList.Items[0].OtherUser.ID)
}

func TestSubscriptionService_ListForUserWithoutRole(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newSubscriptionService()

	undecided := env.createUser(t, "")

	list, err := svc.ListForUser(context.Background(), undecided.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
	assert.Empty(t, list.Items)
}

func TestSubscriptionService_ListSubscribers(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newSubscriptionService()
	ctx := context.Background()

	business := env.createUser(t, entity.RoleBusiness)
	clientA := env.createUser(t, entity.RoleClient)
	clientB := env.createUser(t, entity.RoleClient)

	_, err := svc.Subscribe(ctx, clientA.ID, business.ID, usecase.SubscribeOptions{})
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, clientB.ID, business.ID, usecase.SubscribeOptions{})
	require.NoError(t, err)

	list, err := svc.ListSubscribers(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
}
