package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
)

// TokenCipher protects OAuth tokens at rest. Seal and Open operate on
// opaque base64 strings so repository code never sees key material.
type TokenCipher interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

type aesTokenCipher struct {
	key []byte
}

// NewAESTokenCipher builds an AES-256-GCM cipher from a 64-char hex key.
func NewAESTokenCipher(hexKey string) (TokenCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.New("invalid token encryption key format")
	}
	if len(key) != 32 {
		return nil, errors.New("token encryption key must be 32 bytes (64 hex chars)")
	}
	return &aesTokenCipher{key: key}, nil
}

// Seal encrypts the plaintext. The nonce is prepended to the ciphertext so a
// sealed token is a single self-contained column value.
func (c *aesTokenCipher) Seal(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *aesTokenCipher) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.New("sealed token too short")
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
