// Package repository defines the persistence interfaces consumed by the use
// case layer. Concrete implementations live under internal/infra.
package repository

import (
	"context"

	"stampcard/internal/domain/entity"
	"stampcard/internal/errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository manages user identities and their onboarding state.
type UserRepository interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *entity.User) error

	// FindUserByID retrieves a user by its unique ID.
	FindUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindUserByEmail retrieves a user by email.
	FindUserByEmail(ctx context.Context, email string) (*entity.User, error)

	// UpdateUser persists profile changes for an existing user.
	UpdateUser(ctx context.Context, user *entity.User) error

	// UpdateQRMirror stores the active QR payload on the user row as a
	// fallback read path.
	UpdateQRMirror(ctx context.Context, userID uuid.UUID, payload string) error
}
