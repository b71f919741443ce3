package repositories

import (
	"gorm.io/gorm"
)

// Store wraps the database handle and exposes the queries the service needs.
// It is passed down explicitly rather than reached through a package global,
// so tests can hand every component its own database.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn inside one database transaction. Every store method
// called on the Store handed to fn sees and writes the same transaction, and
// any error rolls the whole batch back.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
