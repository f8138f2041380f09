// Package qr implements the QR short code generator and payload codec
// shared by the scan and QR use cases.
package qr

import (
	"crypto/rand"
	"strconv"
	"time"

	"stampcard/internal/domain/entity"
	"stampcard/internal/errors"
)

// codeAlphabet excludes visually ambiguous symbols (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of generated short codes.
const CodeLength = 8

const nonceFragmentLength = 10

// NewShortCode returns a random short code drawn from codeAlphabet.
// Sampling rejects out-of-range bytes so every symbol is equally likely.
func NewShortCode() (string, error) {
	return randomString(codeAlphabet, CodeLength)
}

// NewNonce returns a single-use nonce combining a random fragment with the
// current timestamp, so two payloads generated in the same instant still
// differ.
func NewNonce() (string, error) {
	fragment, err := randomString(codeAlphabet, nonceFragmentLength)
	if err != nil {
		return "", err
	}

	return fragment + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36), nil
}

// NewPayload builds a fresh QR payload for the given owner with a new code,
// nonce and issue timestamp.
func NewPayload(ownerUserID string) (*entity.QRPayload, error) {
	code, err := NewShortCode()
	if err != nil {
		return nil, err
	}

	nonce, err := NewNonce()
	if err != nil {
		return nil, err
	}

	return &entity.QRPayload{
		UserID: ownerUserID,
		Code:   code,
		Nonce:  nonce,
		Ts:     time.Now().UnixMilli(),
	}, nil
}

func randomString(alphabet string, length int) (string, error) {
	// Largest multiple of len(alphabet) at most 256; bytes at or above it
	// are rejected to avoid modulo bias. Kept as an int so a limit of
	// exactly 256 accepts every byte instead of truncating to 0.
	limit := 256 / len(alphabet) * len(alphabet)

	out := make([]byte, 0, length)
	buf := make([]byte, length*2)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Wrap(err, "read random bytes")
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
