package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkataria09/sealdrop/internal/errs"
)

func TestLocalBlobStoreRoundTrip(t *testing.T) {
	store, err := NewLocalBlobStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "doc-1", []byte("ciphertext bytes")))

	got, err := store.Read(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext bytes"), got)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, keys)

	require.NoError(t, store.Delete(ctx, "doc-1"))

	_, err = store.Read(ctx, "doc-1")
	assert.ErrorIs(t, err, errs.ErrBlobNotFound)
}

func TestLocalBlobStoreMissing(t *testing.T) {
	store, err := NewLocalBlobStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Read(ctx, "absent")
	assert.ErrorIs(t, err, errs.ErrBlobNotFound)

	err = store.Delete(ctx, "absent")
	assert.ErrorIs(t, err, errs.ErrBlobNotFound)
}

func TestLocalBlobStoreOverwrite(t *testing.T) {
	store, err := NewLocalBlobStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "doc-1", []byte("v1")))
	require.NoError(t, store.Write(ctx, "doc-1", []byte("v2")))

	got, err := store.Read(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestLocalBlobStoreConfinesKeys(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	store, err := NewLocalBlobStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "../../escape", []byte("stays inside")))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "escape", entries[0].Name())
}
