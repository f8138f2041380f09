package repository

import (
	"context"

	"stampcard/internal/domain/entity"
	"stampcard/internal/errors"

	"github.com/google/uuid"
)

// ErrQRCodeNotFound is returned when no QR registration matches the lookup.
var ErrQRCodeNotFound = errors.New("qr code not found")

// QRCodeRepository manages the one-active-QR-per-owner registry.
type QRCodeRepository interface {
	// UpsertByOwner creates the owner's registration or overwrites it in
	// place with a new code and payload. The previous code stops resolving.
	UpsertByOwner(ctx context.Context, qr *entity.QRCode) error

	// FindByOwner retrieves the active registration for an owner.
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*entity.QRCode, error)

	// FindByCode resolves a manually entered short code.
	FindByCode(ctx context.Context, code string) (*entity.QRCode, error)
}
