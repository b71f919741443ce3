package identity

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/mkataria09/sealdrop/internal/crypto"
	"github.com/mkataria09/sealdrop/internal/errs"
	"github.com/mkataria09/sealdrop/internal/models"
	"github.com/mkataria09/sealdrop/internal/repositories"
)

// Service owns key custody: it provisions identities and unlocks private keys
// for the duration of one request. Private keys exist in memory only between
// Unlock and the end of the call chain that needed them; they are never
// cached and never stored in the clear.
type Service struct {
	store   *repositories.Store
	kdf     crypto.KDF
	wrapper repositories.KeyWrapper // optional second envelope, may be nil
}

func NewService(store *repositories.Store, kdf crypto.KDF, wrapper repositories.KeyWrapper) *Service {
	return &Service{store: store, kdf: kdf, wrapper: wrapper}
}

// Provisioned is the one-time result of creating an identity. Credential is
// handed to the caller exactly once and is not recoverable afterwards.
type Provisioned struct {
	User       *models.User
	Credential string
}

// Provision creates a user: fresh RSA keypair, fresh diceware credential, and
// the private key sealed under the credential-derived key. Only the sealed
// blob and the public half are persisted.
func (s *Service) Provision(ctx context.Context, id, name, email string) (*Provisioned, error) {
	priv, pub, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	privPEM, err := crypto.MarshalPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	pubPEM, err := crypto.MarshalPublicKey(pub)
	if err != nil {
		return nil, err
	}

	credential, err := crypto.NewCredential()
	if err != nil {
		return nil, err
	}
	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, err
	}

	sealed, err := crypto.Encrypt(s.kdf.DeriveKey(credential, salt), privPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to seal private key: %w", err)
	}

	blob := make([]byte, 0, len(salt)+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, sealed...)

	if s.wrapper != nil {
		blob, err = s.wrapper.Wrap(ctx, blob)
		if err != nil {
			return nil, fmt.Errorf("failed to wrap private key blob: %w", err)
		}
	}

	user := &models.User{
		ID:                  id,
		Name:                name,
		Email:               email,
		PublicKey:           string(pubPEM),
		EncryptedPrivateKey: blob,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return &Provisioned{User: user, Credential: credential}, nil
}

// Unlock recovers the user's private key from its sealed blob. Any failure
// along the way, wrong credential, corrupted blob, or a key that does not
// match the stored public half, surfaces as errs.ErrInvalidCredential so a
// caller cannot tell which check tripped.
func (s *Service) Unlock(ctx context.Context, userID, credential string) (*rsa.PrivateKey, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.unlock(ctx, user, credential)
}

func (s *Service) unlock(ctx context.Context, user *models.User, credential string) (*rsa.PrivateKey, error) {
	blob := user.EncryptedPrivateKey
	if s.wrapper != nil {
		var err error
		blob, err = s.wrapper.Unwrap(ctx, blob)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap private key blob: %w", err)
		}
	}

	if len(blob) <= crypto.SaltSize {
		return nil, errs.ErrInvalidCredential
	}
	salt, sealed := blob[:crypto.SaltSize], blob[crypto.SaltSize:]

	privPEM, err := crypto.Decrypt(s.kdf.DeriveKey(credential, salt), sealed)
	if err != nil {
		return nil, errs.ErrInvalidCredential
	}

	priv, err := crypto.ParsePrivateKey(privPEM)
	if err != nil {
		return nil, errs.ErrInvalidCredential
	}

	pub, err := crypto.ParsePublicKey([]byte(user.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored public key: %w", err)
	}
	if !crypto.VerifyKeyPair(priv, pub) {
		return nil, errs.ErrInvalidCredential
	}
	return priv, nil
}

// VerifyCredential checks a credential without handing out the key. It is the
// login primitive: possession of a credential that unlocks a key matching the
// stored public half is what authentication means here. It reports false on
// any failure, unknown user included, so repeated wrong guesses are
// side-effect free and indistinguishable from outside.
func (s *Service) VerifyCredential(ctx context.Context, userID, credential string) bool {
	_, err := s.Unlock(ctx, userID, credential)
	return err == nil
}
