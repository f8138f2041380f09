package qr

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{"userId":"user-1","code":"ABCD2345","nonce":"XY-abc","ts":1700000000000}`

func TestParsePayload(t *testing.T) {
	t.Run("raw JSON", func(t *testing.T) {
		p, err := ParsePayload(samplePayload)
		require.NoError(t, err)

		assert.Equal(t, "user-1", p.UserID)
		assert.Equal(t, "ABCD2345", p.Code)
		assert.Equal(t, "XY-abc", p.Nonce)
		assert.Equal(t, int64(1700000000000), p.Ts)
	})

	t.Run("JSON with string ts", func(t *testing.T) {
		p, err := ParsePayload(`{"userId":"user-1","code":"ABCD2345","nonce":"XY-abc","ts":"1700000000000"}`)
		require.NoError(t, err)

		assert.Equal(t, int64(1700000000000), p.Ts)
	})

	t.Run("URL with JSON payload param", func(t *testing.T) {
		raw := "https://stampcard.app/scan?payload=%7B%22userId%22%3A%22user-1%22%2C%22code%22%3A%22ABCD2345%22%2C%22ts%22%3A1700000000000%7D"

		p, err := ParsePayload(raw)
		require.NoError(t, err)
		assert.Equal(t, "user-1", p.UserID)
	})

	t.Run("URL with base64 payload in short param", func(t *testing.T) {
		encoded := base64.URLEncoding.EncodeToString([]byte(samplePayload))

		p, err := ParsePayload("https://stampcard.app/scan?d=" + encoded)
		require.NoError(t, err)
		assert.Equal(t, "ABCD2345", p.Code)
	})

	t.Run("whole input base64", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte(samplePayload))

		p, err := ParsePayload(encoded)
		require.NoError(t, err)
		assert.Equal(t, "user-1", p.UserID)
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		p, err := ParsePayload("  " + samplePayload + "\n")
		require.NoError(t, err)
		assert.Equal(t, "user-1", p.UserID)
	})

	t.Run("missing required fields", func(t *testing.T) {
		cases := []string{
			`{"code":"ABCD2345","nonce":"n","ts":1700000000000}`,
			`{"userId":"user-1","nonce":"n","ts":1700000000000}`,
			`{"userId":"user-1","code":"ABCD2345","nonce":"n"}`,
			`{"userId":"user-1","code":"ABCD2345","ts":1700000000000}`,
			`{"userId":"","code":"ABCD2345","nonce":"n","ts":1}`,
		}
		for _, raw := range cases {
			_, err := ParsePayload(raw)
			assert.ErrorIs(t, err, ErrMalformedPayload, "input: %s", raw)
		}
	})

	t.Run("garbage input", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "not json", "https://stampcard.app/scan", "%%%%"} {
			_, err := ParsePayload(raw)
			assert.ErrorIs(t, err, ErrMalformedPayload, "input: %s", raw)
		}
	})

	t.Run("non-numeric ts rejected", func(t *testing.T) {
		_, err := ParsePayload(`{"userId":"user-1","code":"ABCD2345","nonce":"n","ts":"soon"}`)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}
