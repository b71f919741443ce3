package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/mkataria09/sealdrop/internal/errs"
)

// AES-GCM layout constants. The sealed blob is nonce(16) || tag(16) || ciphertext.
// This layout is part of the storage contract and must not change without a
// version marker.
const (
	GCMNonceSize = 16
	GCMTagSize   = 16
)

// NewContentKey returns a fresh random 32-byte key for encrypting one document.
func NewContentKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate content key: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, errs.ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, GCMNonceSize)
}

// Encrypt seals plaintext with AES-GCM under key, using a fresh random nonce
// per call. Key must be 16, 24, or 32 bytes.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, GCMNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends the tag after the ciphertext; the stored layout wants it
	// between nonce and ciphertext.
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	ct := sealed[:len(sealed)-GCMTagSize]
	tag := sealed[len(sealed)-GCMTagSize:]

	out := make([]byte, 0, GCMNonceSize+len(sealed))
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, ct...)
	return out, nil
}

// Decrypt opens a nonce || tag || ciphertext blob sealed by Encrypt. It
// returns errs.ErrIntegrity when the tag does not verify, which covers both a
// wrong key and tampered data; no partial plaintext is ever returned.
func Decrypt(key, blob []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(blob) < GCMNonceSize+GCMTagSize {
		return nil, errs.ErrIntegrity
	}

	nonce := blob[:GCMNonceSize]
	tag := blob[GCMNonceSize : GCMNonceSize+GCMTagSize]
	ct := blob[GCMNonceSize+GCMTagSize:]

	sealed := make([]byte, 0, len(ct)+GCMTagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errs.ErrIntegrity
	}
	return plaintext, nil
}
