package entity

import "github.com/google/uuid"

// ScanAction tags what a unified scan resolved to.
type ScanAction string

const (
	// ScanActionSubscribe is a client scanning a business QR.
	ScanActionSubscribe ScanAction = "subscribe"
	// ScanActionGrantStamps is a business scanning a client QR.
	ScanActionGrantStamps ScanAction = "grantStamps"
)

// ScanResult is the outcome of a unified QR action. Success is false only
// for the soft daily-cap denial on the subscribe path; every other failure
// surfaces as an error.
type ScanResult struct {
	Success           bool           `json:"success"`
	Action            ScanAction     `json:"action"`
	AlreadySubscribed bool           `json:"already_subscribed,omitempty"`
	SubscriptionID    uuid.UUID      `json:"subscription_id,omitempty"`
	StampsGranted     int            `json:"stamps_granted"`
	StampsBefore      int            `json:"stamps_before"`
	TotalStamps       int            `json:"total_stamps"`
	ClientID          uuid.UUID      `json:"client_id"`
	BusinessID        uuid.UUID      `json:"business_id"`
	TargetUser        PublicIdentity `json:"target_user"`
	QR                QRInfo         `json:"qr"`
}

// GrantResult is the outcome of a legacy single-purpose grant mutation.
type GrantResult struct {
	Success       bool      `json:"success"`
	StampsGranted int       `json:"stamps_granted"`
	TotalStamps   int       `json:"total_stamps"`
	ClientID      uuid.UUID `json:"client_id"`
	BusinessID    uuid.UUID `json:"business_id"`
	QR            QRInfo    `json:"qr"`
}

// SubscribeResult is the outcome of a legacy single-purpose subscribe
// mutation.
type SubscribeResult struct {
	Success           bool      `json:"success"`
	AlreadySubscribed bool      `json:"already_subscribed"`
	SubscriptionID    uuid.UUID `json:"subscription_id"`
	ClientID          uuid.UUID `json:"client_id"`
	BusinessID        uuid.UUID `json:"business_id"`
	QR                QRInfo    `json:"qr"`
}
