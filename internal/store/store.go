// Package store provides a persistence layer that abstracts database
// operations, handling UUID generation, timestamps, and event logging.
// Mutations are staged in a transaction and become visible only on commit.
package store

import (
	"database/sql"
	"fmt"

	"github.com/mowens/linkvault/internal/db"
	"github.com/mowens/linkvault/internal/events"
)

// Store is the root store that provides access to domain-specific stores.
type Store struct {
	db *db.DB

	// Domain-specific stores
	Folders *FolderStore
	Tags    *TagStore
	Links   *LinkStore
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Folders = &FolderStore{store: s}
	s.Tags = &TagStore{store: s}
	s.Links = &LinkStore{store: s}
	return s
}

// DB returns the underlying database connection (for read-only queries).
func (s *Store) DB() *db.DB {
	return s.db
}

// Events returns an event writer bound to the store's database.
func (s *Store) Events() *events.Writer {
	return events.NewWriter(s.db.DB)
}

// withTx executes fn within a transaction. If fn returns nil, the transaction
// is committed; otherwise it is rolled back.
func (s *Store) withTx(fn func(tx *sql.Tx, ew *events.Writer) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ew := events.NewWriter(s.db.DB)
	if err := fn(tx, ew); err != nil {
		return err
	}

	return tx.Commit()
}
