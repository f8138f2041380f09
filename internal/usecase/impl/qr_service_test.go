package impl

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
)

func TestQRService_GenerateReplacesActiveCode(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newQRService()
	ctx := context.Background()

	owner := env.createUser(t, entity.RoleBusiness)

	first, err := svc.Generate(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, first.Code, 8)

	var payload entity.QRPayload
	require.NoError(t, json.Unmarshal([]byte(first.Payload), &payload))
	assert.Equal(t, owner.ID.String(), payload.UserID)
	assert.Equal(t, first.Code, payload.Code)
	assert.NotZero(t, payload.Ts)

	second, err := svc.Generate(ctx, owner.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, second.Code)

	// The retired code stops resolving, the fresh one resolves.
	_, err = svc.ResolveCode(ctx, first.Code)
	assert.ErrorIs(t, err, domainerrors.ErrQRNotFound)

	identity, err := svc.ResolveCode(ctx, second.Code)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, identity.ID)
}

func TestQRService_GetOwnBeforeAndAfterGenerate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newQRService()
	ctx := context.Background()

	owner := env.createUser(t, entity.RoleClient)

	// Reading is not minting: a user without a QR has none.
	_, err := svc.GetOwn(ctx, owner.ID)
	assert.ErrorIs(t, err, domainerrors.ErrQRNotFound)

	generated, err := svc.Generate(ctx, owner.ID)
	require.NoError(t, err)

	info, err := svc.GetOwn(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, info.OwnerUserID)
	assert.Equal(t, generated.Code, info.Code)

	again, err := svc.GetOwn(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, info.Code, again.Code)
}

func TestQRService_GetOwnFallsBackToMirror(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newQRService()
	ctx := context.Background()

	owner := env.createUser(t, entity.RoleClient)

	info, err := svc.Generate(ctx, owner.ID)
	require.NoError(t, err)

	// Drop the registry row; the payload mirrored on the user row still
	// serves reads.
	require.NoError(t, env.db.Exec("DELETE FROM qr_codes").Error)

	recovered, err := svc.GetOwn(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, info.Code, recovered.Code)
	assert.Equal(t, info.Payload, recovered.Payload)
}

func TestQRService_RenderOwnPNG(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newQRService()
	ctx := context.Background()

	owner := env.createUser(t, entity.RoleBusiness)

	info, err := svc.Generate(ctx, owner.ID)
	require.NoError(t, err)

	image, err := svc.RenderOwnPNG(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("png:"+info.Payload), image)
}

func TestQRService_ResolveUnknownCode(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newQRService()

	_, err := svc.ResolveCode(context.Background(), "NOSUCHCD")
	assert.ErrorIs(t, err, domainerrors.ErrQRNotFound)
}
