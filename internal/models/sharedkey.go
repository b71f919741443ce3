package models

import (
	"time"
)

// SharedKey is one row of the access registry: a document's content key
// wrapped under one user's public key. Holding a row is what "has access"
// means; there is no separate permission table.
type SharedKey struct {
	DocumentID string    `json:"documentId" gorm:"primaryKey"`
	UserID     string    `json:"userId" gorm:"primaryKey"`
	WrappedKey []byte    `json:"-" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
