package models

import (
	"time"
)

// Document is upload metadata only. The content lives in the blob store under
// ID, already encrypted; neither the database nor the blob tier ever holds
// plaintext.
type Document struct {
	ID          string    `json:"id" gorm:"primaryKey"` // deterministic: UUIDv5 over owner, path and content hash
	Filepath    string    `json:"filepath" gorm:"index;not null"`
	OwnerID     string    `json:"ownerId" gorm:"index;not null"`
	ContentHash string    `json:"contentHash" gorm:"not null"` // SHA-256 hex of the plaintext
	UploadedOn  time.Time `json:"uploadedOn" gorm:"autoCreateTime"`

	Owner      User        `json:"-" gorm:"foreignKey:OwnerID"`
	SharedKeys []SharedKey `json:"-" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}
