package repository

import (
	"context"
	"time"

	"stampcard/internal/domain/entity"
	"stampcard/internal/errors"

	"github.com/google/uuid"
)

// ErrStampNotFound is returned when no ledger row matches the lookup.
var ErrStampNotFound = errors.New("stamp ledger row not found")

// StampRepository manages the per-(client, business) stamp ledger. The model
// keeps at most one row per pair, enforced by a unique composite index.
type StampRepository interface {
	// CreateStamp persists a new ledger row.
	CreateStamp(ctx context.Context, stamp *entity.Stamp) error

	// FindStampByPair retrieves the ledger row for one (client, business)
	// pair.
	FindStampByPair(ctx context.Context, clientID, businessID uuid.UUID) (*entity.Stamp, error)

	// FindStampsByPair retrieves all ledger rows for a pair, oldest grant
	// first. Under the unique pair index this is at most one row; the
	// ordering keeps redemption deduction deterministic regardless.
	FindStampsByPair(ctx context.Context, clientID, businessID uuid.UUID) ([]*entity.Stamp, error)

	// FindStampsByClient retrieves all ledger rows of a client across
	// businesses.
	FindStampsByClient(ctx context.Context, clientID uuid.UUID) ([]*entity.Stamp, error)

	// AddStampQuantity accumulates quantity onto a ledger row and refreshes
	// its grant timestamp.
	AddStampQuantity(ctx context.Context, id uuid.UUID, quantity int, grantedAt time.Time) error

	// SetStampQuantity overwrites a row's quantity without touching the
	// grant timestamp (used by redemption deduction).
	SetStampQuantity(ctx context.Context, id uuid.UUID, quantity int) error

	// TotalStampsForPair sums all ledger quantities for a pair.
	TotalStampsForPair(ctx context.Context, clientID, businessID uuid.UUID) (int, error)

	// FindRecentStampsByBusiness retrieves the most recent grants of a
	// business, newest first, up to limit rows.
	FindRecentStampsByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]*entity.Stamp, error)
}
