package usecase

import (
	"context"

	"github.com/google/uuid"

	"stampcard/internal/domain/entity"
)

// QRUsecase manages per-user QR codes and payload resolution.
type QRUsecase interface {
	// Generate issues a fresh QR payload for the user, replacing any
	// previous one. The retired code stops resolving immediately.
	Generate(ctx context.Context, userID uuid.UUID) (*entity.QRInfo, error)

	// GetOwn returns the user's current QR code, or NotFound when none has
	// been generated yet.
	GetOwn(ctx context.Context, userID uuid.UUID) (*entity.QRInfo, error)

	// RenderOwnPNG returns the user's current QR payload rendered as a PNG
	// image. NotFound when no payload exists.
	RenderOwnPNG(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// ResolveCode looks up the owner of a short code.
	ResolveCode(ctx context.Context, code string) (*entity.PublicIdentity, error)
}
