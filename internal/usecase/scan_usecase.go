package usecase

import (
	"context"

	"github.com/google/uuid"

	"stampcard/internal/domain/entity"
)

// ProcessScanInput carries the raw scanned text and an optional stamp
// quantity for business-to-client scans.
type ProcessScanInput struct {
	ScannerID uuid.UUID
	RawText   string
	Quantity  int // only read on the grant path, which requires 1..max
}

// ScanUsecase resolves scanned QR text and dispatches on the scanner/owner
// role pair: a client scanning a business subscribes, a business scanning a
// client grants stamps.
type ScanUsecase interface {
	// ProcessAction decodes the scanned text, classifies the role pair and
	// performs the corresponding action.
	ProcessAction(ctx context.Context, input ProcessScanInput) (*entity.ScanResult, error)

	// SubscribeFromPayload links the scanner and the QR owner as
	// client-business, whichever side each is on. The payload must still be
	// fresh.
	SubscribeFromPayload(ctx context.Context, scannerID uuid.UUID, rawText string) (*entity.SubscribeResult, error)

	// SubscribeByCode subscribes via a manually entered short code. The
	// code's canonical payload is resolved and goes through the same
	// freshness check as a scanned payload.
	SubscribeByCode(ctx context.Context, scannerID uuid.UUID, code string) (*entity.SubscribeResult, error)

	// GrantFromPayload grants stamps to the client identified by the scanned
	// payload.
	GrantFromPayload(ctx context.Context, businessID uuid.UUID, rawText string, quantity int) (*entity.GrantResult, error)

	// GrantByCode grants stamps to the client owning the short code.
	GrantByCode(ctx context.Context, businessID uuid.UUID, code string, quantity int) (*entity.GrantResult, error)
}
