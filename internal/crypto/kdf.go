package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// KDF derives a fixed-size symmetric key from a human credential. It is a
// seam: how much work a deployment can afford depends on where unlocking
// happens, so the identity layer takes any KDF rather than hardcoding one.
type KDF interface {
	DeriveKey(credential string, salt []byte) []byte
}

// SaltSize is the number of random bytes prepended to every encrypted key blob.
const SaltSize = 16

// Argon2id parameters for interactive server-side logins: one pass over 64 MiB
// with four lanes, yielding a 32-byte AES key.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// Argon2idKDF is the default credential KDF.
type Argon2idKDF struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultKDF returns an Argon2idKDF tuned for interactive logins.
func DefaultKDF() Argon2idKDF {
	return Argon2idKDF{Time: argonTime, Memory: argonMemory, Threads: argonThreads}
}

// DeriveKey stretches credential into a 32-byte key. Equal credential and salt
// always yield the same key.
func (k Argon2idKDF) DeriveKey(credential string, salt []byte) []byte {
	return argon2.IDKey([]byte(credential), salt, k.Time, k.Memory, k.Threads, argonKeyLen)
}

// NewSalt returns a fresh random KDF salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
