// Package impl contains the implementation of the application's business logic.
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

// userService implements the UserUsecase interface.
type userService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account with a hashed password. The role stays
// unset until the onboarding profile update picks one.
func (srv *userService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	_, err := srv.userRepo.FindUserByEmail(ctx, input.Email)
	if err == nil {
		return nil, domainerrors.ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := srv.userRepo.CreateUser(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}

	return &usecase.RegisterOutput{User: user}, nil
}

// Login verifies credentials and issues a token pair.
func (srv *userService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := srv.userRepo.FindUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if err := srv.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, domainerrors.ErrInvalidCredentials
	}

	roles := []string{}
	if user.Role != "" {
		roles = append(roles, user.Role.String())
	}

	accessToken, refreshToken, err := srv.tokenService.GenerateTokens(user.ID, roles)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	srv.log(ctx).Info("User logged in", slog.String("user_id", user.ID.String()))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// GetProfile returns the full profile of the authenticated user.
func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

// UpdateProfile patches the provided profile fields. The role can be set
// exactly once; business attributes are only written for business accounts.
func (srv *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input usecase.UpdateProfileInput) (*entity.User, error) {
	user, err := srv.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, domainerrors.ErrValidationFailed.WithDetails("role must be client or business")
		}
		if user.Role != "" && user.Role != *input.Role {
			return nil, domainerrors.ErrRoleImmutable
		}
		user.Role = *input.Role
	}

	if input.Name != nil && *input.Name != "" {
		user.Name = *input.Name
	}
	if input.Username != nil && *input.Username != "" {
		user.Username = *input.Username
	}

	if user.Role == entity.RoleBusiness {
		if input.BusinessName != nil {
			user.BusinessName = *input.BusinessName
		}
		if input.BusinessCategory != nil {
			user.BusinessCategory = *input.BusinessCategory
		}
		if input.Location != nil {
			user.Location = *input.Location
		}
		if input.City != nil {
			user.City = *input.City
		}
		if input.ExactAddress != nil {
			user.ExactAddress = *input.ExactAddress
		}
	}

	user.UpdatedAt = time.Now()

	if err := srv.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to update user")
	}

	srv.log(ctx).Info("Profile updated",
		slog.String("user_id", user.ID.String()),
		slog.String("role", user.Role.String()))

	return user, nil
}
