package qr

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"stampcard/internal/domain/entity"
	"stampcard/internal/errors"
)

// ErrMalformedPayload is returned when no decoding strategy yields a valid
// payload.
var ErrMalformedPayload = errors.New("qr: malformed payload")

// Query parameters checked, in order, when the scanned text is a URL.
var payloadParams = []string{"payload", "p", "data", "d"}

// ParsePayload decodes scanned QR text into a payload. Scanner apps hand us
// the text in several shapes, so decoding tries, in order:
//
//  1. the raw text as JSON
//  2. a URL carrying the payload in a query parameter, itself either JSON
//     or base64-encoded JSON
//  3. the whole text as base64-encoded JSON
func ParsePayload(raw string) (*entity.QRPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformedPayload
	}

	if p, err := decodeJSON(raw); err == nil {
		return p, nil
	}

	if p, err := decodeURL(raw); err == nil {
		return p, nil
	}

	if p, err := decodeBase64(raw); err == nil {
		return p, nil
	}

	return nil, ErrMalformedPayload
}

func decodeURL(raw string) (*entity.QRPayload, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, ErrMalformedPayload
	}

	query := u.Query()
	for _, key := range payloadParams {
		value := query.Get(key)
		if value == "" {
			continue
		}

		if p, err := decodeJSON(value); err == nil {
			return p, nil
		}

		if p, err := decodeBase64(value); err == nil {
			return p, nil
		}
	}

	return nil, ErrMalformedPayload
}

func decodeBase64(raw string) (*entity.QRPayload, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		decoded, err = base64.URLEncoding.DecodeString(raw)
		if err != nil {
			return nil, ErrMalformedPayload
		}
	}

	return decodeJSON(string(decoded))
}

// rawPayload tolerates ts arriving as either a JSON number or a numeric
// string, which differs between scanner client versions.
type rawPayload struct {
	UserID *string         `json:"userId"`
	Code   *string         `json:"code"`
	Nonce  *string         `json:"nonce"`
	Ts     json.RawMessage `json:"ts"`
}

func decodeJSON(raw string) (*entity.QRPayload, error) {
	var rp rawPayload
	if err := json.Unmarshal([]byte(raw), &rp); err != nil {
		return nil, ErrMalformedPayload
	}

	if rp.UserID == nil || *rp.UserID == "" || rp.Code == nil || *rp.Code == "" {
		return nil, ErrMalformedPayload
	}
	if rp.Nonce == nil {
		return nil, ErrMalformedPayload
	}

	ts, err := coerceTimestamp(rp.Ts)
	if err != nil {
		return nil, ErrMalformedPayload
	}

	return &entity.QRPayload{
		UserID: *rp.UserID,
		Code:   *rp.Code,
		Nonce:  *rp.Nonce,
		Ts:     ts,
	}, nil
}

func coerceTimestamp(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, errors.New("qr: missing ts")
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(s, 10, 64)
	}

	return 0, errors.New("qr: unsupported ts type")
}
