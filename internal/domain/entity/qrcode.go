package entity

import (
	"time"

	"github.com/google/uuid"
)

// QRCode is the single active QR registration for one owner. Regenerating
// overwrites the row in place, which retires the previous code from lookups.
type QRCode struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`     // short human-readable fallback identifier
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	Payload     string    `json:"payload"` // JSON-serialized QRPayload
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QRPayload is the structured content encoded into a QR image. It is derived
// from QRCode.Payload and never persisted on its own.
type QRPayload struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
	Nonce  string `json:"nonce"`
	Ts     int64  `json:"ts"` // epoch milliseconds at generation time
}

// QRInfo is the QR projection returned to callers for display and
// client-side verification.
type QRInfo struct {
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	Code        string    `json:"code"`
	Payload     string    `json:"payload"`
	UpdatedAt   time.Time `json:"updated_at"`
}
