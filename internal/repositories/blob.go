package repositories

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkataria09/sealdrop/internal/errs"
)

// BlobStore is the byte tier. It moves opaque blobs under string keys and
// knows nothing about users, documents, or keys; everything it holds is
// already encrypted by the time it arrives.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}

// LocalBlobStore keeps blobs as flat files under a root directory, one file
// per key. Keys are document IDs, never caller-supplied paths.
type LocalBlobStore struct {
	root string
}

func NewLocalBlobStore(root string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &LocalBlobStore{root: root}, nil
}

func (l *LocalBlobStore) path(key string) string {
	return filepath.Join(l.root, filepath.Base(key))
}

func (l *LocalBlobStore) Write(_ context.Context, key string, data []byte) error {
	if err := os.WriteFile(l.path(key), data, 0o600); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

func (l *LocalBlobStore) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

func (l *LocalBlobStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(l.path(key)); err != nil {
		if os.IsNotExist(err) {
			return errs.ErrBlobNotFound
		}
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

func (l *LocalBlobStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}
