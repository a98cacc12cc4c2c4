// Package crypt seals small JSON claims into opaque URL-safe tokens with
// AES-256-GCM, for links mailed to customers such as the newsletter opt-out.
//
// Every token is bound to a purpose string passed as additional data, so a
// token minted for one flow fails to open in another:
//
//	tok, _ := crypt.Seal("newsletter.unsubscribe", claim)
//	err := crypt.Open("newsletter.unsubscribe", tok, &claim)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diamantrouge/maison/config"
)

// ErrInvalidToken is returned for tokens that are malformed, tampered with,
// sealed under another key or minted for another purpose.
var ErrInvalidToken = errors.New("crypt: invalid token")

var encoding = base64.RawURLEncoding

// aead builds the cipher from APP_KEY, falling back to JWT_SECRET.
func aead() (cipher.AEAD, error) {
	secret := config.Get("APP_KEY", config.JWTSecret())
	if secret == "" {
		return nil, errors.New("crypt: APP_KEY not configured")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Seal encodes v as JSON and encrypts it for purpose. The token is
// base64url(nonce | ciphertext) without padding.
func Seal(purpose string, v any) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("crypt: marshal: %w", err)
	}
	gcm, err := aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize(), gcm.NonceSize()+len(plain)+gcm.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	return encoding.EncodeToString(gcm.Seal(nonce, nonce, plain, []byte(purpose))), nil
}

// Open authenticates token for purpose and decodes its claim into dest.
func Open(purpose, token string, dest any) error {
	raw, err := encoding.DecodeString(token)
	if err != nil {
		return ErrInvalidToken
	}
	gcm, err := aead()
	if err != nil {
		return err
	}
	if len(raw) < gcm.NonceSize()+gcm.Overhead() {
		return ErrInvalidToken
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, []byte(purpose))
	if err != nil {
		return ErrInvalidToken
	}
	if err := json.Unmarshal(plain, dest); err != nil {
		return ErrInvalidToken
	}
	return nil
}
