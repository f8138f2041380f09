package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/service"
)

func TestStampService_AccumulateAutoSubscribes(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newStampService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	result, err := svc.Accumulate(ctx, client.ID, business.ID, 5)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 5, result.StampsGranted)
	assert.Equal(t, 5, result.TotalStamps)

	_, err = env.subRepo.FindSubscriptionByPair(ctx, client.ID, business.ID)
	require.NoError(t, err)

	again, err := svc.Accumulate(ctx, client.ID, business.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, again.TotalStamps)

	assert.Len(t, env.publisher.eventsOfType(service.EventStampsGranted), 2)
}

func TestStampService_AccumulateQuantityBounds(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newStampService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	_, err := svc.Accumulate(ctx, client.ID, business.ID, 0)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)

	_, err = svc.Accumulate(ctx, client.ID, business.ID, 11)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)
}

func TestStampService_GrantDailyBonusCapsPerDay(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newStampService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	first, err := svc.GrantDailyBonus(ctx, client.ID, business.ID)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, 1, first.StampsGranted)
	assert.Equal(t, 1, first.TotalStamps)

	second, err := svc.GrantDailyBonus(ctx, client.ID, business.ID)
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, 0, second.StampsGranted)
	assert.Equal(t, 1, second.TotalStamps)

	// The capped attempt publishes nothing.
	assert.Len(t, env.publisher.eventsOfType(service.EventStampsGranted), 1)
}

func TestStampService_ClientStamps(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newStampService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	businessA := env.createUser(t, entity.RoleBusiness)
	businessB := env.createUser(t, entity.RoleBusiness)

	_, err := svc.Accumulate(ctx, client.ID, businessA.ID, 3)
	require.NoError(t, err)
	_, err = svc.Accumulate(ctx, client.ID, businessB.ID, 4)
	require.NoError(t, err)

	stamps, err := svc.ClientStamps(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, stamps, 2)

	total := 0
	for _, stamp := range stamps {
		total += stamp.Quantity
	}
	assert.Equal(t, 7, total)
}

func TestStampService_BusinessHistoryAttachesClients(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newStampService()
	ctx := context.Background()

	business := env.createUser(t, entity.RoleBusiness)
	clientA := env.createUser(t, entity.RoleClient)
	clientB := env.createUser(t, entity.RoleClient)

	_, err := svc.Accumulate(ctx, clientA.ID, business.ID, 1)
	require.NoError(t, err)
	_, err = svc.Accumulate(ctx, clientB.ID, business.ID, 2)
	require.NoError(t, err)

	entries, err := svc.BusinessHistory(ctx, business.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		require.NotNil(t, entry.Client)
		assert.Equal(t, entity.RoleClient, entry.Client.Role)
	}

	limited, err := svc.BusinessHistory(ctx, business.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
