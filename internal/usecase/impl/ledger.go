package impl

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stampcard/internal/domain/entity"
	"stampcard/internal/domain/repository"
	"stampcard/internal/errors"
)

// Shared ledger primitives used by the subscription, stamp and scan
// services. Every helper operates on transaction-bound repositories so a
// caller can compose several of them inside one transaction.

// ensureSubscription creates the (client, business) subscription if it does
// not exist yet. Repeat calls are idempotent.
func ensureSubscription(ctx context.Context, factory repository.RepositoryFactory, clientID, businessID uuid.UUID) (subscriptionID uuid.UUID, alreadySubscribed bool, err error) {
	subRepo := factory.SubscriptionRepo()

	existing, err := subRepo.FindSubscriptionByPair(ctx, clientID, businessID)
	if err == nil {
		return existing.ID, true, nil
	}
	if !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return uuid.Nil, false, errors.Wrap(err, "failed to find subscription by pair")
	}

	subscription := &entity.Subscription{
		ID:           uuid.New(),
		ClientID:     clientID,
		BusinessID:   businessID,
		SubscribedAt: time.Now(),
	}

	if err := subRepo.CreateSubscription(ctx, subscription); err != nil {
		// A concurrent subscribe may have won the unique pair index race.
		if errors.Is(err, repository.ErrDuplicateSubscription) {
			winner, findErr := subRepo.FindSubscriptionByPair(ctx, clientID, businessID)
			if findErr != nil {
				return uuid.Nil, false, errors.Wrap(findErr, "failed to reload subscription after conflict")
			}

			return winner.ID, true, nil
		}

		return uuid.Nil, false, errors.Wrap(err, "failed to create subscription")
	}

	return subscription.ID, false, nil
}

// grantToLedger accumulates quantity onto the pair's ledger row, creating
// the row on first grant. Returns the totals before and after.
func grantToLedger(ctx context.Context, factory repository.RepositoryFactory, clientID, businessID uuid.UUID, quantity int, now time.Time) (before, total int, err error) {
	stampRepo := factory.StampRepo()

	row, err := stampRepo.FindStampByPair(ctx, clientID, businessID)
	if err == nil {
		if err := stampRepo.AddStampQuantity(ctx, row.ID, quantity, now); err != nil {
			return 0, 0, errors.Wrap(err, "failed to add stamp quantity")
		}

		return row.Quantity, row.Quantity + quantity, nil
	}
	if !errors.Is(err, repository.ErrStampNotFound) {
		return 0, 0, errors.Wrap(err, "failed to find stamp by pair")
	}

	stamp := &entity.Stamp{
		ID:         uuid.New(),
		ClientID:   clientID,
		BusinessID: businessID,
		Quantity:   quantity,
		GrantedAt:  now,
	}

	if err := stampRepo.CreateStamp(ctx, stamp); err != nil {
		return 0, 0, errors.Wrap(err, "failed to create stamp row")
	}

	return 0, quantity, nil
}

// grantDailyBonusToLedger grants the single bonus stamp unless the pair's
// ledger row was already touched today. The cap compares calendar days in
// server local time, mirroring how GrantedAt doubles as the last-grant
// timestamp.
func grantDailyBonusToLedger(ctx context.Context, factory repository.RepositoryFactory, clientID, businessID uuid.UUID, now time.Time) (granted bool, total int, err error) {
	stampRepo := factory.StampRepo()

	row, err := stampRepo.FindStampByPair(ctx, clientID, businessID)
	if err == nil && sameLocalDay(row.GrantedAt, now) {
		return false, row.Quantity, nil
	}
	if err != nil && !errors.Is(err, repository.ErrStampNotFound) {
		return false, 0, errors.Wrap(err, "failed to find stamp by pair")
	}

	_, total, err = grantToLedger(ctx, factory, clientID, businessID, 1, now)
	if err != nil {
		return false, 0, err
	}

	return true, total, nil
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()

	return ay == by && am == bm && ad == bd
}
