// Package store keeps an in-memory SQLite journal of the effects a session
// performed. Nothing is written to disk; the journal ends with the process.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("not found")

// DefaultCapacity is how many events the journal keeps before pruning the oldest.
const DefaultCapacity = 1000

// Store represents an in-memory SQLite database holding the session journal.
type Store struct {
	db       *sql.DB
	capacity int
}

// New opens a private in-memory database and runs migrations. A capacity of
// zero or less uses DefaultCapacity.
func New(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:       db,
		capacity: capacity,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection, discarding the journal.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Capacity returns the maximum number of events kept.
func (s *Store) Capacity() int {
	return s.capacity
}
