package entity

import (
	"time"

	"github.com/google/uuid"
)

// Stamp is the ledger row accumulating a client's stamp total for one
// business. The model keeps at most one row per (client, business) pair;
// grants patch quantity and refresh GrantedAt in place, so GrantedAt doubles
// as the last-grant timestamp used by the daily-bonus cap.
type Stamp struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	BusinessID uuid.UUID `json:"business_id"`
	Quantity   int       `json:"quantity"`
	GrantedAt  time.Time `json:"granted_at"`
}

// StampHistoryEntry is one grant record enriched with the client identity,
// for the business-side history view.
type StampHistoryEntry struct {
	Stamp
	Client *PublicIdentity `json:"client"`
}
