package entity

import (
	"time"

	"github.com/google/uuid"
)

// Reward is a redeemable prize owned and mutated only by its business.
// ValidUntil is an optional ISO date string (YYYY-MM-DD); empty means the
// reward never expires.
type Reward struct {
	ID             uuid.UUID `json:"id"`
	BusinessID     uuid.UUID `json:"business_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	RequiredStamps int       `json:"required_stamps"`
	ValidUntil     string    `json:"valid_until,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Expired reports whether the reward's validity window has passed at the
// given instant. Rewards without a ValidUntil never expire; an unparsable
// date is treated the same way.
func (r *Reward) Expired(now time.Time) bool {
	if r.ValidUntil == "" {
		return false
	}

	validUntil, err := time.Parse("2006-01-02", r.ValidUntil)
	if err != nil {
		return false
	}

	return validUntil.Before(now)
}

// Redemption is one append-only audit record of a client exchanging stamps
// for a reward.
type Redemption struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	BusinessID uuid.UUID `json:"business_id"`
	RewardID   uuid.UUID `json:"reward_id"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// RedemptionDetail enriches a redemption with client and reward context for
// the business-side audit view.
type RedemptionDetail struct {
	Redemption
	Client *PublicIdentity `json:"client"`
	Reward *Reward         `json:"reward"`
}

// RewardProgress is a reward annotated with one client's progress toward it.
// Progress counts only stamps not consumed by prior redemptions of the same
// reward.
type RewardProgress struct {
	RewardID       uuid.UUID `json:"reward_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	RequiredStamps int       `json:"required_stamps"`
	ValidUntil     string    `json:"valid_until,omitempty"`
	Progress       int       `json:"progress"`
	CanRedeem      bool      `json:"can_redeem"`
}

// BusinessCard aggregates one subscription for the client card view: the
// business identity, the stamp total, and per-reward progress.
type BusinessCard struct {
	Business    PublicIdentity   `json:"business"`
	TotalStamps int              `json:"total_stamps"`
	Rewards     []RewardProgress `json:"rewards"`
}

// ClientSubscriptions is the full aggregated card set for one client.
type ClientSubscriptions struct {
	ClientID      uuid.UUID      `json:"client_id"`
	Subscriptions []BusinessCard `json:"subscriptions"`
}
