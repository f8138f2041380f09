package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stampcard/internal/domain/entity"
	domainerrors "stampcard/internal/domain/errors"
	"stampcard/internal/infra/auth"
	"stampcard/internal/usecase"
)

func newUserServiceForTest(t *testing.T, env *testEnv) *userService {
	t.Helper()

	tokenSvc, err := auth.NewJWTService(env.cfg)
	require.NoError(t, err)

	return &userService{
		userRepo:     env.userRepo,
		hasher:       auth.NewBcryptHasher(env.cfg),
		tokenService: tokenSvc,
		logger:       newDiscardLogger(),
	}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserServiceForTest(t, env)
	ctx := context.Background()

	output, err := svc.Register(ctx, usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", output.User.Email)
	assert.Empty(t, output.User.Role)
	assert.NotEqual(t, "correct-horse", output.User.PasswordHash)

	login, err := svc.Login(ctx, usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, output.User.ID, login.User.ID)
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserServiceForTest(t, env)
	ctx := context.Background()

	_, err := svc.Register(ctx, usecase.RegisterInput{
		Email:    "bob@example.com",
		Password: "password-one",
		Name:     "Bob",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, usecase.RegisterInput{
		Email:    "bob@example.com",
		Password: "password-two",
		Name:     "Bobby",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestUserService_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserServiceForTest(t, env)
	ctx := context.Background()

	_, err := svc.Register(ctx, usecase.RegisterInput{
		Email:    "carol@example.com",
		Password: "right-password",
		Name:     "Carol",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, usecase.LoginInput{
		Email:    "carol@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever-pass",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestUserService_UpdateProfile_SetsRoleOnce(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserServiceForTest(t, env)
	ctx := context.Background()

	output, err := svc.Register(ctx, usecase.RegisterInput{
		Email:    "dave@example.com",
		Password: "some-password",
		Name:     "Dave",
	})
	require.NoError(t, err)

	business := entity.RoleBusiness
	name := "Dave's Diner"
	user, err := svc.UpdateProfile(ctx, output.User.ID, usecase.UpdateProfileInput{
		Role:         &business,
		BusinessName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBusiness, user.Role)
	assert.Equal(t, "Dave's Diner", user.BusinessName)

	// Setting the same role again is a no-op, not a violation.
	_, err = svc.UpdateProfile(ctx, output.User.ID, usecase.UpdateProfileInput{Role: &business})
	require.NoError(t, err)

	client := entity.RoleClient
	_, err = svc.UpdateProfile(ctx, output.User.ID, usecase.UpdateProfileInput{Role: &client})
	assert.ErrorIs(t, err, domainerrors.ErrRoleImmutable)
}

func TestUserService_UpdateProfile_InvalidRole(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserServiceForTest(t, env)
	ctx := context.Background()

	output, err := svc.Register(ctx, usecase.RegisterInput{
		Email:    "erin@example.com",
		Password: "some-password",
		Name:     "Erin",
	})
	require.NoError(t, err)

	bogus := entity.Role("admin")
	_, err = svc.UpdateProfile(ctx, output.User.ID, usecase.UpdateProfileInput{Role: &bogus})

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
}

func TestUserService_UpdateProfile_BusinessFieldsIgnoredForClients(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserServiceForTest(t, env)
	ctx := context.Background()

	output, err := svc.Register(ctx, usecase.RegisterInput{
		Email:    "frank@example.com",
		Password: "some-password",
		Name:     "Frank",
	})
	require.NoError(t, err)

	client := entity.RoleClient
	name := "Should Not Stick"
	user, err := svc.UpdateProfile(ctx, output.User.ID, usecase.UpdateProfileInput{
		Role:         &client,
		BusinessName: &name,
	})
	require.NoError(t, err)
	assert.Empty(t, user.BusinessName)
}
