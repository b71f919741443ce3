package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkataria09/sealdrop/internal/errs"
	"github.com/mkataria09/sealdrop/internal/models"
)

// CreateDocument inserts the row. The primary key is deterministic, so a
// duplicate here means the same content was already uploaded; that case comes
// back as errs.ErrDocumentExists and is the serialization point for racing
// uploads.
func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrDocumentExists
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return &doc, nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// ListAccessible returns every document the user holds a wrapped key for,
// their own uploads included, since owners always hold a registry row.
func (s *Store) ListAccessible(ctx context.Context, userID string) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Joins("JOIN shared_keys ON shared_keys.document_id = documents.id").
		Where("shared_keys.user_id = ?", userID).
		Order("documents.uploaded_on DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accessible documents: %w", err)
	}
	return docs, nil
}

// GetSharedKey looks up the registry row granting userID access to the
// document. A missing row means no access, so that case surfaces as
// errs.ErrAccessDenied rather than a generic not-found.
func (s *Store) GetSharedKey(ctx context.Context, documentID, userID string) (*models.SharedKey, error) {
	var key models.SharedKey
	err := s.db.WithContext(ctx).
		First(&key, "document_id = ? AND user_id = ?", documentID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrAccessDenied
		}
		return nil, fmt.Errorf("failed to fetch shared key: %w", err)
	}
	return &key, nil
}

// UpsertSharedKey inserts the registry row, or refreshes the wrapped key if
// the (document, user) pair already has one. Re-sharing therefore never
// duplicates rows and never fails on conflict.
func (s *Store) UpsertSharedKey(ctx context.Context, key *models.SharedKey) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"wrapped_key"}),
		}).
		Create(key).Error
	if err != nil {
		return fmt.Errorf("failed to upsert shared key: %w", err)
	}
	return nil
}

// DeleteSharedKey removes one registry row and reports whether it existed.
func (s *Store) DeleteSharedKey(ctx context.Context, documentID, userID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Delete(&models.SharedKey{}, "document_id = ? AND user_id = ?", documentID, userID)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete shared key: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteSharedKeysForDocument clears the document's registry rows. Database
// cascades cover this too; doing it explicitly keeps the delete transaction
// portable across drivers.
func (s *Store) DeleteSharedKeysForDocument(ctx context.Context, documentID string) error {
	if err := s.db.WithContext(ctx).
		Delete(&models.SharedKey{}, "document_id = ?", documentID).Error; err != nil {
		return fmt.Errorf("failed to delete shared keys: %w", err)
	}
	return nil
}
