package envelope

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mkataria09/sealdrop/internal/crypto"
	"github.com/mkataria09/sealdrop/internal/errs"
	"github.com/mkataria09/sealdrop/internal/models"
	"github.com/mkataria09/sealdrop/internal/repositories"
)

// Manager orchestrates envelope encryption: one random DEK per document seals
// the content, and the DEK itself is stored only wrapped under recipient
// public keys. The manager never persists a DEK or any plaintext; both exist
// in memory for the duration of a single call.
type Manager struct {
	store  *repositories.Store
	blobs  repositories.BlobStore
	logger zerolog.Logger
}

func NewManager(store *repositories.Store, blobs repositories.BlobStore, logger zerolog.Logger) *Manager {
	return &Manager{store: store, blobs: blobs, logger: logger}
}

type recipient struct {
	user *models.User
	pub  *rsa.PublicKey
}

type UploadResult struct {
	Document   *models.Document
	AccessList []string
	Existing   bool
}

type DownloadResult struct {
	Filepath string
	OwnerID  string
	Content  []byte
}

// ShareResult reports what one share call changed: which recipients gained
// access, which already held a wrapped key (their key bytes are refreshed,
// same DEK either way), and the full access list afterwards.
type ShareResult struct {
	Granted       []string
	AlreadyShared []string
	AccessList    []string
}

// Upload encrypts content under a fresh DEK, persists the ciphertext, and
// wraps the DEK for the owner plus every initial recipient, all rows in one
// transaction. The document id is deterministic, so uploading the same
// content to the same path again returns the existing document's sharing
// state instead of re-encrypting; two racing uploads collide on the primary
// key and the loser adopts the winner's state.
func (m *Manager) Upload(ctx context.Context, ownerID, filepath string, content []byte, recipientIDs []string) (*UploadResult, error) {
	if _, err := m.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil, errs.ErrOwnerNotFound
		}
		return nil, err
	}

	hash := ContentHash(content)
	id := DocumentID(ownerID, filepath, hash)

	doc, err := m.store.GetDocument(ctx, id)
	if err == nil {
		return m.existingState(ctx, doc)
	}
	if !errors.Is(err, errs.ErrDocumentNotFound) {
		return nil, err
	}

	targets, err := m.resolveRecipients(ctx, append([]string{ownerID}, recipientIDs...))
	if err != nil {
		return nil, err
	}

	dek, err := crypto.NewContentKey()
	if err != nil {
		return nil, err
	}
	sealed, err := crypto.Encrypt(dek, content)
	if err != nil {
		return nil, err
	}
	rows, err := wrapForAll(id, targets, dek)
	if err != nil {
		return nil, err
	}

	doc = &models.Document{
		ID:          id,
		Filepath:    filepath,
		OwnerID:     ownerID,
		ContentHash: hash,
	}
	txErr := m.store.Transaction(func(tx *repositories.Store) error {
		if err := tx.CreateDocument(ctx, doc); err != nil {
			return err
		}
		for i := range rows {
			if err := tx.UpsertSharedKey(ctx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, errs.ErrDocumentExists) {
			winner, err := m.store.GetDocument(ctx, id)
			if err != nil {
				return nil, err
			}
			return m.existingState(ctx, winner)
		}
		return nil, txErr
	}

	if err := m.blobs.Write(ctx, id, sealed); err != nil {
		m.rollbackUpload(ctx, id)
		return nil, fmt.Errorf("failed to persist ciphertext: %w", err)
	}

	return &UploadResult{Document: doc, AccessList: idsOf(targets)}, nil
}

// Download recovers plaintext for a user. Every failure mode is distinct:
// unknown document, no registry row (errs.ErrAccessDenied), a private key
// that cannot unwrap the row (errs.ErrInvalidKey), missing ciphertext, or a
// failed authentication tag (errs.ErrIntegrity). Nothing partial is ever
// returned.
func (m *Manager) Download(ctx context.Context, documentID, userID string, priv *rsa.PrivateKey) (*DownloadResult, error) {
	doc, err := m.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	row, err := m.store.GetSharedKey(ctx, doc.ID, userID)
	if err != nil {
		return nil, err
	}
	dek, err := crypto.DecryptRSA(priv, row.WrappedKey)
	if err != nil {
		return nil, errs.ErrInvalidKey
	}
	sealed, err := m.blobs.Read(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	content, err := crypto.Decrypt(dek, sealed)
	if err != nil {
		return nil, err
	}
	return &DownloadResult{Filepath: doc.Filepath, OwnerID: doc.OwnerID, Content: content}, nil
}

// Share wraps the document's DEK for each recipient and upserts their
// registry rows in one transaction. Authorization is cryptographic: the
// caller must hold the private key that unwraps the owner's own row, so a
// stolen session without the right key cannot grant access.
func (m *Manager) Share(ctx context.Context, documentID, callerID string, priv *rsa.PrivateKey, recipientIDs []string) (*ShareResult, error) {
	doc, err := m.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	dek, err := m.ownerUnwrap(ctx, doc, callerID, priv)
	if err != nil {
		return nil, err
	}
	targets, err := m.resolveRecipients(ctx, recipientIDs)
	if err != nil {
		return nil, err
	}
	rows, err := wrapForAll(doc.ID, targets, dek)
	if err != nil {
		return nil, err
	}

	holders, err := m.store.UsersWithAccess(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	held := make(map[string]struct{}, len(holders))
	for _, u := range holders {
		held[u.ID] = struct{}{}
	}

	err = m.store.Transaction(func(tx *repositories.Store) error {
		for i := range rows {
			if err := tx.UpsertSharedKey(ctx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &ShareResult{
		Granted:       make([]string, 0, len(targets)),
		AlreadyShared: make([]string, 0),
	}
	for _, t := range targets {
		if _, ok := held[t.user.ID]; ok {
			res.AlreadyShared = append(res.AlreadyShared, t.user.ID)
		} else {
			res.Granted = append(res.Granted, t.user.ID)
		}
	}
	sort.Strings(res.Granted)
	sort.Strings(res.AlreadyShared)

	res.AccessList, err = m.accessList(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Revoke deletes the registry rows for the given users. The owner's row is
// untouchable; if the owner appears in revokeIDs the whole call fails before
// any row is removed. Revoking a user who holds no row is a no-op. This does
// not rotate the DEK: plaintext or keys extracted before revocation stay
// valid knowledge outside the system.
func (m *Manager) Revoke(ctx context.Context, documentID, callerID string, priv *rsa.PrivateKey, revokeIDs []string) ([]string, error) {
	doc, err := m.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := m.ownerUnwrap(ctx, doc, callerID, priv); err != nil {
		return nil, err
	}

	ids := dedupe(revokeIDs)
	for _, id := range ids {
		if id == doc.OwnerID {
			return nil, errs.ErrCannotRevokeOwner
		}
	}

	err = m.store.Transaction(func(tx *repositories.Store) error {
		for _, id := range ids {
			if _, err := tx.DeleteSharedKey(ctx, doc.ID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.accessList(ctx, doc.ID)
}

// Delete destroys a document: ciphertext first, then every registry row and
// the document record in one transaction. If the transaction fails the blob
// is already gone, so remaining rows unwrap nothing and a retry completes the
// cleanup.
func (m *Manager) Delete(ctx context.Context, documentID, callerID string) error {
	doc, err := m.store.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.OwnerID != callerID {
		return errs.ErrNotOwner
	}

	if err := m.blobs.Delete(ctx, doc.ID); err != nil && !errors.Is(err, errs.ErrBlobNotFound) {
		return err
	}
	return m.store.Transaction(func(tx *repositories.Store) error {
		if err := tx.DeleteSharedKeysForDocument(ctx, doc.ID); err != nil {
			return err
		}
		return tx.DeleteDocument(ctx, doc.ID)
	})
}

// ListForUser returns every document the user can download, own uploads
// included.
func (m *Manager) ListForUser(ctx context.Context, userID string) ([]models.Document, error) {
	return m.store.ListAccessible(ctx, userID)
}

// AccessList returns the ids of every user currently holding a wrapped key
// for the document.
func (m *Manager) AccessList(ctx context.Context, documentID string) ([]string, error) {
	if _, err := m.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return m.accessList(ctx, documentID)
}

// GetDocument returns the document's metadata row.
func (m *Manager) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	return m.store.GetDocument(ctx, documentID)
}

// ownerUnwrap is the authorization primitive for access-list mutation: the
// caller must be the recorded owner and must hold the private key that
// unwraps the owner's registry row. It returns the DEK on success.
func (m *Manager) ownerUnwrap(ctx context.Context, doc *models.Document, callerID string, priv *rsa.PrivateKey) ([]byte, error) {
	if callerID != doc.OwnerID {
		return nil, errs.ErrNotOwner
	}
	row, err := m.store.GetSharedKey(ctx, doc.ID, doc.OwnerID)
	if err != nil {
		if errors.Is(err, errs.ErrAccessDenied) {
			return nil, fmt.Errorf("owner registry row missing for document %s", doc.ID)
		}
		return nil, err
	}
	dek, err := crypto.DecryptRSA(priv, row.WrappedKey)
	if err != nil {
		return nil, errs.ErrInvalidKey
	}
	return dek, nil
}

func (m *Manager) existingState(ctx context.Context, doc *models.Document) (*UploadResult, error) {
	access, err := m.accessList(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return &UploadResult{Document: doc, AccessList: access, Existing: true}, nil
}

func (m *Manager) accessList(ctx context.Context, documentID string) ([]string, error) {
	users, err := m.store.UsersWithAccess(ctx, documentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Manager) resolveRecipients(ctx context.Context, ids []string) ([]recipient, error) {
	targets := make([]recipient, 0, len(ids))
	for _, id := range dedupe(ids) {
		user, err := m.store.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		pub, err := crypto.ParsePublicKey([]byte(user.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("stored public key for %s is invalid: %w", id, err)
		}
		targets = append(targets, recipient{user: user, pub: pub})
	}
	return targets, nil
}

// rollbackUpload undoes the registry transaction after a failed blob write so
// no registry row ever points at ciphertext that was never persisted.
func (m *Manager) rollbackUpload(ctx context.Context, documentID string) {
	err := m.store.Transaction(func(tx *repositories.Store) error {
		if err := tx.DeleteSharedKeysForDocument(ctx, documentID); err != nil {
			return err
		}
		return tx.DeleteDocument(ctx, documentID)
	})
	if err != nil {
		m.logger.Warn().Err(err).Str("document_id", documentID).
			Msg("failed to roll back registry rows after blob write failure")
	}
}

func wrapForAll(documentID string, targets []recipient, dek []byte) ([]models.SharedKey, error) {
	rows := make([]models.SharedKey, 0, len(targets))
	for _, t := range targets {
		wrapped, err := crypto.EncryptRSA(t.pub, dek)
		if err != nil {
			return nil, fmt.Errorf("failed to wrap key for %s: %w", t.user.ID, err)
		}
		rows = append(rows, models.SharedKey{
			DocumentID: documentID,
			UserID:     t.user.ID,
			WrappedKey: wrapped,
		})
	}
	return rows, nil
}

func idsOf(targets []recipient) []string {
	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.user.ID)
	}
	sort.Strings(ids)
	return ids
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
