package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/mkataria09/sealdrop/internal/errs"
)

const rsaKeyBits = 2048

const (
	privateKeyPEMType = "PRIVATE KEY"
	publicKeyPEMType  = "PUBLIC KEY"
)

// GenerateKeyPair creates a new RSA-2048 keypair.
func GenerateKeyPair() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA keypair: %w", err)
	}
	return priv, &priv.PublicKey, nil
}

// MarshalPrivateKey encodes a private key as a PKCS#8 PEM block.
func MarshalPrivateKey(priv *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: privateKeyPEMType, Bytes: der}), nil
}

// MarshalPublicKey encodes a public key as a PKIX PEM block.
func MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: publicKeyPEMType, Bytes: der}), nil
}

// ParsePrivateKey decodes a PKCS#8 PEM private key.
func ParsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != privateKeyPEMType {
		return nil, errors.New("no PEM-encoded private key found")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}
	return priv, nil
}

// ParsePublicKey decodes a PKIX PEM public key.
func ParsePublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != publicKeyPEMType {
		return nil, errors.New("no PEM-encoded public key found")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}
	return pub, nil
}

// EncryptRSA encrypts a short message (a content key, in practice) to the
// holder of the matching private key, using OAEP with SHA-256.
func EncryptRSA(pub *rsa.PublicKey, msg []byte) ([]byte, error) {
	out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt with RSA: %w", err)
	}
	return out, nil
}

// DecryptRSA reverses EncryptRSA. OAEP deliberately reports nothing beyond
// "decryption error", so callers only ever see errs.ErrDecryption.
func DecryptRSA(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	out, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ciphertext, nil)
	if err != nil {
		return nil, errs.ErrDecryption
	}
	return out, nil
}

// Sign produces an RSA-PSS signature over the SHA-256 digest of data.
func Sign(priv *rsa.PrivateKey, data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPSS(rand.Reader, priv, crypto.SHA256, digest[:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	return sig, nil
}

// Verify reports whether sig is a valid signature over data by the holder of
// the private key matching pub.
func Verify(pub *rsa.PublicKey, data, sig []byte) bool {
	digest := sha256.Sum256(data)
	return rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, nil) == nil
}

// VerifyKeyPair reports whether priv and pub belong to the same keypair. The
// identity layer leans on this to check an unlocked private key against the
// stored public half.
func VerifyKeyPair(priv *rsa.PrivateKey, pub *rsa.PublicKey) bool {
	return priv != nil && pub != nil && priv.PublicKey.Equal(pub)
}
