package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkataria09/sealdrop/internal/errs"
	"github.com/mkataria09/sealdrop/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	return NewStore(db)
}

func testUser(id string) *models.User {
	return &models.User{
		ID:                  id,
		Name:                "User " + id,
		Email:               id + "@example.com",
		PublicKey:           "-----BEGIN PUBLIC KEY-----\n" + id + "\n-----END PUBLIC KEY-----",
		EncryptedPrivateKey: []byte("sealed-" + id),
	}
}

func testDocument(id, ownerID string, uploaded time.Time) *models.Document {
	return &models.Document{
		ID:          id,
		Filepath:    "docs/" + id + ".txt",
		OwnerID:     ownerID,
		ContentHash: "hash-" + id,
		UploadedOn:  uploaded,
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestCreateAndGetUser(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))

	got, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, []byte("sealed-alice"), got.EncryptedPrivateKey)

	_, err = store.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestCreateUserDuplicate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))

	err := store.CreateUser(ctx, testUser("alice"))
	assert.ErrorIs(t, err, errs.ErrUserExists)

	dup := testUser("alice2")
	dup.Email = "alice@example.com"
	err = store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, errs.ErrUserExists)
}

func TestListUsers(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"carol", "alice", "bob"} {
		require.NoError(t, store.CreateUser(ctx, testUser(id)))
	}

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].ID)
	assert.Equal(t, "bob", users[1].ID)
	assert.Equal(t, "carol", users[2].ID)
}

func TestDocumentLifecycle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))
	doc := testDocument("doc-1", "alice", time.Now())
	require.NoError(t, store.CreateDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, "docs/doc-1.txt", got.Filepath)

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err = store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, errs.ErrDocumentNotFound)
}

func TestSharedKeyUpsert(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))
	require.NoError(t, store.CreateUser(ctx, testUser("bob")))
	require.NoError(t, store.CreateDocument(ctx, testDocument("doc-1", "alice", time.Now())))

	first := &models.SharedKey{DocumentID: "doc-1", UserID: "bob", WrappedKey: []byte("wrapped-v1")}
	require.NoError(t, store.UpsertSharedKey(ctx, first))

	second := &models.SharedKey{DocumentID: "doc-1", UserID: "bob", WrappedKey: []byte("wrapped-v2")}
	require.NoError(t, store.UpsertSharedKey(ctx, second))

	got, err := store.GetSharedKey(ctx, "doc-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, []byte("wrapped-v2"), got.WrappedKey)

	users, err := store.UsersWithAccess(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGetSharedKeyMissingIsAccessDenied(t *testing.T) {
	store := testStore(t)

	_, err := store.GetSharedKey(context.Background(), "doc-1", "bob")
	assert.ErrorIs(t, err, errs.ErrAccessDenied)
}

func TestDeleteSharedKey(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))
	require.NoError(t, store.CreateDocument(ctx, testDocument("doc-1", "alice", time.Now())))
	require.NoError(t, store.UpsertSharedKey(ctx, &models.SharedKey{
		DocumentID: "doc-1", UserID: "alice", WrappedKey: []byte("w"),
	}))

	deleted, err := store.DeleteSharedKey(ctx, "doc-1", "alice")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteSharedKey(ctx, "doc-1", "alice")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListAccessible(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))
	require.NoError(t, store.CreateUser(ctx, testUser("bob")))

	old := testDocument("doc-old", "alice", time.Now().Add(-time.Hour))
	recent := testDocument("doc-new", "alice", time.Now())
	private := testDocument("doc-private", "alice", time.Now())
	require.NoError(t, store.CreateDocument(ctx, old))
	require.NoError(t, store.CreateDocument(ctx, recent))
	require.NoError(t, store.CreateDocument(ctx, private))

	for _, docID := range []string{"doc-old", "doc-new"} {
		require.NoError(t, store.UpsertSharedKey(ctx, &models.SharedKey{
			DocumentID: docID, UserID: "bob", WrappedKey: []byte("w"),
		}))
	}

	docs, err := store.ListAccessible(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-new", docs[0].ID)
	assert.Equal(t, "doc-old", docs[1].ID)

	docs, err = store.ListAccessible(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDeleteSharedKeysForDocument(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))
	require.NoError(t, store.CreateUser(ctx, testUser("bob")))
	require.NoError(t, store.CreateDocument(ctx, testDocument("doc-1", "alice", time.Now())))
	for _, userID := range []string{"alice", "bob"} {
		require.NoError(t, store.UpsertSharedKey(ctx, &models.SharedKey{
			DocumentID: "doc-1", UserID: userID, WrappedKey: []byte("w"),
		}))
	}

	require.NoError(t, store.DeleteSharedKeysForDocument(ctx, "doc-1"))

	users, err := store.UsersWithAccess(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))

	err := store.Transaction(func(tx *Store) error {
		if err := tx.CreateDocument(ctx, testDocument("doc-1", "alice", time.Now())); err != nil {
			return err
		}
		if err := tx.UpsertSharedKey(ctx, &models.SharedKey{
			DocumentID: "doc-1", UserID: "alice", WrappedKey: []byte("w"),
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, errs.ErrDocumentNotFound)
	_, err = store.GetSharedKey(ctx, "doc-1", "alice")
	assert.ErrorIs(t, err, errs.ErrAccessDenied)
}
