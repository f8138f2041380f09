package usecase

import (
	"context"

	"github.com/google/uuid"

	"stampcard/internal/domain/entity"
)

// StampUsecase manages stamp grants and balances.
type StampUsecase interface {
	// Accumulate grants quantity stamps from a business to a client,
	// subscribing the client first if needed. Quantity must be between 1
	// and the configured maximum.
	Accumulate(ctx context.Context, clientID, businessID uuid.UUID, quantity int) (*entity.GrantResult, error)

	// GrantDailyBonus awards one bonus stamp, at most once per business per
	// calendar day. A capped grant reports Success=false rather than an
	// error.
	GrantDailyBonus(ctx context.Context, clientID, businessID uuid.UUID) (*entity.GrantResult, error)

	// ClientStamps returns the client's stamp balances grouped by business.
	ClientStamps(ctx context.Context, clientID uuid.UUID) ([]*entity.Stamp, error)

	// BusinessHistory returns recent grants made by a business, newest
	// first, with client identities attached.
	BusinessHistory(ctx context.Context, businessID uuid.UUID, limit int) ([]*entity.StampHistoryEntry, error)
}
