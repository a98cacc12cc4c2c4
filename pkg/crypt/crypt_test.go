package crypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/crypt"
)

type claim struct {
	Email string `json:"e"`
}

func TestSealOpen(t *testing.T) {
	tok, err := crypt.Seal("newsletter.unsubscribe", claim{Email: "sophie@example.com"})
	require.NoError(t, err)
	assert.NotContains(t, tok, "sophie")
	assert.NotContains(t, tok, "=")
	assert.NotContains(t, tok, "+")

	var out claim
	require.NoError(t, crypt.Open("newsletter.unsubscribe", tok, &out))
	assert.Equal(t, "sophie@example.com", out.Email)

	again, err := crypt.Seal("newsletter.unsubscribe", claim{Email: "sophie@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, tok, again, "fresh nonce per token")
}

func TestOpenRejects(t *testing.T) {
	tok, err := crypt.Seal("newsletter.unsubscribe", claim{Email: "vip@example.com"})
	require.NoError(t, err)

	tampered := []byte(tok)
	tampered[len(tampered)-3] ^= 0x01

	var out claim
	for name, tc := range map[string]struct{ purpose, token string }{
		"other purpose": {"password.reset", tok},
		"tampered":      {"newsletter.unsubscribe", string(tampered)},
		"not base64":    {"newsletter.unsubscribe", "%%%"},
		"too short":     {"newsletter.unsubscribe", "abcd"},
		"empty":         {"newsletter.unsubscribe", ""},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, crypt.Open(tc.purpose, tc.token, &out), crypt.ErrInvalidToken)
		})
	}
}

func TestKeyRotationInvalidatesTokens(t *testing.T) {
	config.Set("APP_KEY", "maison-key-2025")
	tok, err := crypt.Seal("newsletter.unsubscribe", claim{Email: "a@example.com"})
	require.NoError(t, err)

	config.Set("APP_KEY", "maison-key-2026")
	t.Cleanup(func() { config.Set("APP_KEY", "") })

	var out claim
	assert.ErrorIs(t, crypt.Open("newsletter.unsubscribe", tok, &out), crypt.ErrInvalidToken)
}
