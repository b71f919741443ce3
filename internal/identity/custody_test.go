package identity

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkataria09/sealdrop/internal/crypto"
	"github.com/mkataria09/sealdrop/internal/errs"
	"github.com/mkataria09/sealdrop/internal/repositories"
)

// testKDF keeps argon2 light so the suite stays fast; production parameters
// are exercised in the crypto package.
var testKDF = crypto.Argon2idKDF{Time: 1, Memory: 8 * 1024, Threads: 1}

func testService(t *testing.T, wrapper repositories.KeyWrapper) *Service {
	t.Helper()
	db, err := repositories.Open("sqlite", filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	return NewService(repositories.NewStore(db), testKDF, wrapper)
}

func TestProvisionAndUnlock(t *testing.T) {
	svc := testService(t, nil)
	ctx := context.Background()

	prov, err := svc.Provision(ctx, "alice", "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, strings.Split(prov.Credential, "-"), 8)
	assert.Contains(t, prov.User.PublicKey, "BEGIN PUBLIC KEY")
	assert.NotContains(t, string(prov.User.EncryptedPrivateKey), "BEGIN PRIVATE KEY")

	priv, err := svc.Unlock(ctx, "alice", prov.Credential)
	require.NoError(t, err)

	pub, err := crypto.ParsePublicKey([]byte(prov.User.PublicKey))
	require.NoError(t, err)
	assert.True(t, crypto.VerifyKeyPair(priv, pub))
}

func TestUnlockWrongCredential(t *testing.T) {
	svc := testService(t, nil)
	ctx := context.Background()

	prov, err := svc.Provision(ctx, "alice", "Alice", "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Unlock(ctx, "alice", prov.Credential+"x")
	assert.ErrorIs(t, err, errs.ErrInvalidCredential)

	_, err = svc.Unlock(ctx, "alice", "")
	assert.ErrorIs(t, err, errs.ErrInvalidCredential)
}

func TestUnlockUnknownUser(t *testing.T) {
	svc := testService(t, nil)

	_, err := svc.Unlock(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestProvisionDuplicate(t *testing.T) {
	svc := testService(t, nil)
	ctx := context.Background()

	_, err := svc.Provision(ctx, "alice", "Alice", "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Provision(ctx, "alice", "Alice Again", "alice2@example.com")
	assert.ErrorIs(t, err, errs.ErrUserExists)
}

func TestVerifyCredential(t *testing.T) {
	svc := testService(t, nil)
	ctx := context.Background()

	prov, err := svc.Provision(ctx, "alice", "Alice", "alice@example.com")
	require.NoError(t, err)

	assert.True(t, svc.VerifyCredential(ctx, "alice", prov.Credential))
	assert.False(t, svc.VerifyCredential(ctx, "alice", "wrong"))
	assert.False(t, svc.VerifyCredential(ctx, "nobody", prov.Credential))
}

func TestCustodyWithKeyWrapper(t *testing.T) {
	wrapper, err := repositories.NewLocalKeyWrapper(bytes.Repeat([]byte{9}, 32))
	require.NoError(t, err)
	svc := testService(t, wrapper)
	ctx := context.Background()

	prov, err := svc.Provision(ctx, "alice", "Alice", "alice@example.com")
	require.NoError(t, err)

	priv, err := svc.Unlock(ctx, "alice", prov.Credential)
	require.NoError(t, err)
	assert.NotNil(t, priv)

	_, err = svc.Unlock(ctx, "alice", "wrong-credential")
	assert.ErrorIs(t, err, errs.ErrInvalidCredential)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, expiry, err := issuer.Issue("alice", "correct-horse")
	require.NoError(t, err)
	assert.True(t, expiry.After(time.Now()))

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "correct-horse", claims.Credential)
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, _, err := issuer.Issue("alice", "correct-horse")
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, _, err := issuer.Issue("alice", "correct-horse")
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.Error(t, err)

	_, err = issuer.Parse("not.a.token")
	assert.Error(t, err)
}
