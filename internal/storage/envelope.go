package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Envelope format: magic(8) + salt(16) + nonce(12) + ciphertext + auth_tag(16)
const (
	gcmMagic      = "GCM3NCR0"
	saltLen       = 16
	nonceLen      = 12
	tagLen        = 16
	kdfIterations = 100000
	keyLen        = 32
)

// ErrNotSealed is returned by Open for data without the envelope magic.
var ErrNotSealed = errors.New("data is not a GCM3NCR0 envelope")

// IsSealed reports whether data starts with the envelope magic.
func IsSealed(data []byte) bool {
	return len(data) >= len(gcmMagic) && string(data[:len(gcmMagic)]) == gcmMagic
}

// Seal encrypts plaintext with a key derived from password.
func Seal(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(gcmMagic)+saltLen+nonceLen+len(plaintext)+tagLen)
	out = append(out, gcmMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts an envelope produced by Seal.
func Open(data []byte, password string) ([]byte, error) {
	if !IsSealed(data) {
		return nil, ErrNotSealed
	}
	if len(data) < len(gcmMagic)+saltLen+nonceLen+tagLen {
		return nil, fmt.Errorf("GCM data too short: %d bytes", len(data))
	}
	salt := data[8:24]
	nonce := data[24:36]
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, data[36:], nil)
	if err != nil {
		return nil, fmt.Errorf("GCM decryption failed: %w", err)
	}
	return plaintext, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
