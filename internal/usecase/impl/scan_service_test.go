package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/domain/service"
	"stampcard/internal/usecase"
)

// activeQR generates a fresh registration for the user and returns it.
func activeQR(t *testing.T, env *testEnv, userID uuid.UUID) *entity.QRInfo {
	t.Helper()

	info, err := env.newQRService().Generate(context.Background(), userID)
	require.NoError(t, err)

	return info
}

// assertAppErrorCode asserts err carries the given business error code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.ErrorCode())
}

func TestScanService_ClientScansBusiness_SubscribesWithBonus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, business.ID)

	result, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{
		ScannerID: client.ID,
		RawText:   qrInfo.Payload,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, entity.ScanActionSubscribe, result.Action)
	assert.False(t, result.AlreadySubscribed)
	assert.Equal(t, 1, result.StampsGranted)
	assert.Equal(t, 0, result.StampsBefore)
	assert.Equal(t, 1, result.TotalStamps)
	assert.Equal(t, client.ID, result.ClientID)
	assert.Equal(t, business.ID, result.BusinessID)
	assert.Equal(t, business.ID, result.TargetUser.ID)

	assert.Len(t, env.publisher.eventsOfType(service.EventSubscriptionCreated), 1)
	assert.Len(t, env.publisher.eventsOfType(service.EventStampsGranted), 1)
}

func TestScanService_SecondScanSameDayCapsBonus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, business.ID)

	_, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{ScannerID: client.ID, RawText: qrInfo.Payload})
	require.NoError(t, err)

	// The cap is a soft outcome: the scan still succeeds as a request but
	// earns nothing today.
	result, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{ScannerID: client.ID, RawText: qrInfo.Payload})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.AlreadySubscribed)
	assert.Equal(t, 0, result.StampsGranted)
	assert.Equal(t, 1, result.TotalStamps)

	assert.Len(t, env.publisher.eventsOfType(service.EventSubscriptionCreated), 1)
	assert.Len(t, env.publisher.eventsOfType(service.EventStampsGranted), 1)
}

func TestScanService_BusinessScansClient_GrantsWithAutoSubscribe(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, client.ID)

	result, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{
		ScannerID: business.ID,
		RawText:   qrInfo.Payload,
		Quantity:  3,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, entity.ScanActionGrantStamps, result.Action)
	assert.False(t, result.AlreadySubscribed)
	assert.Equal(t, 3, result.StampsGranted)
	assert.Equal(t, 0, result.StampsBefore)
	assert.Equal(t, 3, result.TotalStamps)
	assert.Equal(t, client.ID, result.TargetUser.ID)

	// The grant pulled the client into the subscriber list.
	sub, err := env.subRepo.FindSubscriptionByPair(ctx, client.ID, business.ID)
	require.NoError(t, err)
	assert.Equal(t, result.SubscriptionID, sub.ID)
}

func TestScanService_QuantityBounds(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, client.ID)

	// A grant without an explicit quantity is rejected, not coerced to 1.
	_, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{
		ScannerID: business.ID,
		RawText:   qrInfo.Payload,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)

	_, err = svc.ProcessAction(ctx, usecase.ProcessScanInput{
		ScannerID: business.ID,
		RawText:   qrInfo.Payload,
		Quantity:  11,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)

	result, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{
		ScannerID: business.ID,
		RawText:   qrInfo.Payload,
		Quantity:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.StampsGranted)
}

func TestScanService_SelfScanRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	business := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, business.ID)

	_, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{
		ScannerID: business.ID,
		RawText:   qrInfo.Payload,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSelfScan)
}

func TestScanService_SameRolePairRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	clientA := env.createUser(t, entity.RoleClient)
	clientB := env.createUser(t, entity.RoleClient)
	qrInfo := activeQR(t, env, clientB.ID)

	_, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{
		ScannerID: clientA.ID,
		RawText:   qrInfo.Payload,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRoleCombination)
}

func TestScanService_RawTextFallsBackToShortCode(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, business.ID)

	result, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{
		ScannerID: client.ID,
		RawText:   qrInfo.Code,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ScanActionSubscribe, result.Action)
	assert.True(t, result.Success)
}

func TestScanService_PayloadMustNameOwner(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	intruder := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, business.ID)

	forged := fmt.Sprintf(`{"userId":%q,"code":%q,"nonce":"n","ts":%d}`,
		intruder.ID.String(), qrInfo.Code, time.Now().UnixMilli())

	_, err := svc.ProcessAction(ctx, usecase.ProcessScanInput{
		ScannerID: client.ID,
		RawText:   forged,
	})
	assertAppErrorCode(t, err, "INVALID_PAYLOAD")
}

func TestScanService_SubscribeFromPayload_BothDirections(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)

	// A business scanning a client's QR still links the same pair.
	clientQR := activeQR(t, env, client.ID)
	result, err := svc.SubscribeFromPayload(ctx, business.ID, clientQR.Payload)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, client.ID, result.ClientID)
	assert.Equal(t, business.ID, result.BusinessID)

	// The reverse direction reports the existing link.
	businessQR := activeQR(t, env, business.ID)
	again, err := svc.SubscribeFromPayload(ctx, client.ID, businessQR.Payload)
	require.NoError(t, err)
	assert.True(t, again.AlreadySubscribed)
	assert.Equal(t, result.SubscriptionID, again.SubscriptionID)
}

func TestScanService_SubscribeFromPayload_StaleTimestamp(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, business.ID)

	stale := fmt.Sprintf(`{"userId":%q,"code":%q,"nonce":"n","ts":%d}`,
		business.ID.String(), qrInfo.Code, time.Now().Add(-10*time.Minute).UnixMilli())

	_, err := svc.SubscribeFromPayload(ctx, client.ID, stale)
	assert.ErrorIs(t, err, domainerrors.ErrPayloadExpired)
}

func TestScanService_SubscribeFromPayload_RetiredCode(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	qrSvc := env.newQRService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	old := activeQR(t, env, business.ID)

	// Regenerating retires the old code even when a scanner replays a
	// fresh-looking payload carrying it.
	_, err := qrSvc.Generate(ctx, business.ID)
	require.NoError(t, err)

	replayed := fmt.Sprintf(`{"userId":%q,"code":%q,"nonce":"n","ts":%d}`,
		business.ID.String(), old.Code, time.Now().UnixMilli())

	_, err = svc.SubscribeFromPayload(ctx, client.ID, replayed)
	assertAppErrorCode(t, err, "INVALID_PAYLOAD")
}

func TestScanService_SubscribeByCode_ReplaysStoredFreshness(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, business.ID)

	result, err := svc.SubscribeByCode(ctx, client.ID, qrInfo.Code)
	require.NoError(t, err)
	assert.True(t, result.Success)

	// Age the stored payload past the freshness window; the code path
	// replays it and rejects.
	var payload entity.QRPayload
	require.NoError(t, json.Unmarshal([]byte(qrInfo.Payload), &payload))
	payload.Ts = time.Now().Add(-10 * time.Minute).UnixMilli()
	aged, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, env.db.Exec("UPDATE qr_codes SET payload = ?", string(aged)).Error)

	_, err = svc.SubscribeByCode(ctx, client.ID, qrInfo.Code)
	assert.ErrorIs(t, err, domainerrors.ErrPayloadExpired)
}

func TestScanService_GrantRequiresBusinessScanner(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	clientA := env.createUser(t, entity.RoleClient)
	clientB := env.createUser(t, entity.RoleClient)
	qrInfo := activeQR(t, env, clientB.ID)

	_, err := svc.GrantByCode(ctx, clientA.ID, qrInfo.Code, 1)
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func TestScanService_GrantTargetMustBeClient(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	businessA := env.createUser(t, entity.RoleBusiness)
	businessB := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, businessB.ID)

	_, err := svc.GrantByCode(ctx, businessA.ID, qrInfo.Code, 1)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRoleCombination)
}

func TestScanService_GrantByCodeAccumulates(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newScanService()
	ctx := context.Background()

	client := env.createUser(t, entity.RoleClient)
	business := env.createUser(t, entity.RoleBusiness)
	qrInfo := activeQR(t, env, client.ID)

	first, err := svc.GrantByCode(ctx, business.ID, qrInfo.Code, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, first.TotalStamps)

	second, err := svc.GrantByCode(ctx, business.ID, qrInfo.Code, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, second.TotalStamps)

	_, err = svc.GrantByCode(ctx, business.ID, qrInfo.Code, 0)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)
}
