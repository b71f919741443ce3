package models

import (
	"time"
)

type User struct {
	ID                  string    `json:"id" gorm:"primaryKey"`
	Name                string    `json:"name" gorm:"not null"`
	Email               string    `json:"email" gorm:"uniqueIndex;not null"`
	PublicKey           string    `json:"publicKey" gorm:"type:text;not null"` // PEM, the only key material kept in the clear
	EncryptedPrivateKey []byte    `json:"-" gorm:"not null"`                   // salt || AES-GCM blob sealed under the credential-derived key
	CreatedAt           time.Time `json:"createdAt" gorm:"autoCreateTime"`

	SharedKeys []SharedKey `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
