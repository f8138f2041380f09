package qr

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShortCode(t *testing.T) {
	t.Run("has fixed length and stays within the alphabet", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code, err := NewShortCode()
			require.NoError(t, err)
			assert.Len(t, code, CodeLength)

			for _, r := range code {
				assert.Contains(t, codeAlphabet, string(r))
			}
		}
	})

	// The 32-symbol alphabet divides 256 exactly, so the rejection limit
	// must accept every byte; a truncated limit would reject all of them
	// and generation would never return.
	t.Run("returns promptly when the rejection limit covers all bytes", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			defer close(done)
			code, err := randomString(codeAlphabet, CodeLength)
			assert.NoError(t, err)
			assert.Len(t, code, CodeLength)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("randomString did not return")
		}
	})

	t.Run("consecutive codes differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			code, err := NewShortCode()
			require.NoError(t, err)
			assert.False(t, seen[code], "short code repeated: %s", code)
			seen[code] = true
		}
	})
}

func TestNewNonce(t *testing.T) {
	nonce, err := NewNonce()
	require.NoError(t, err)

	parts := strings.SplitN(nonce, "-", 2)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], nonceFragmentLength)
	assert.NotEmpty(t, parts[1])

	other, err := NewNonce()
	require.NoError(t, err)
	assert.NotEqual(t, nonce, other)
}

func TestNewPayload(t *testing.T) {
	payload, err := NewPayload("owner-123")
	require.NoError(t, err)

	assert.Equal(t, "owner-123", payload.UserID)
	assert.Len(t, payload.Code, CodeLength)
	assert.NotEmpty(t, payload.Nonce)
	assert.Positive(t, payload.Ts)
}
