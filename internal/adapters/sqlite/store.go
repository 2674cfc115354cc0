// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tenth-speed-writer/PFLTK/internal/db"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// DBTX is the executor repositories run against: a *sql.DB or a *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements secondary.Store over a SQLite handle.
type Store struct {
	db *sql.DB
}

var _ secondary.Store = (*Store)(nil)

// NewStore creates a store over an open database.
func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// NewRepositories binds every repository to one executor.
func NewRepositories(exec DBTX) *secondary.Repositories {
	return &secondary.Repositories{
		Wars:      NewWarRepository(exec),
		Maps:      NewMapRepository(exec),
		Labels:    NewLabelRepository(exec),
		Icons:     NewIconRepository(exec),
		Tickets:   NewTicketRepository(exec),
		Users:     NewUserRepository(exec),
		Commands:  NewCommandRepository(exec),
		IconTypes: NewIconTypeRepository(exec),
	}
}

// Repos returns repositories bound to the database handle.
func (s *Store) Repos() *secondary.Repositories {
	return NewRepositories(s.db)
}

// InTx runs fn inside a transaction, committing only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(repos *secondary.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InReadTx runs fn inside a transaction that is always rolled back.
func (s *Store) InReadTx(ctx context.Context, fn func(repos *secondary.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	return fn(NewRepositories(tx))
}

// EnsureSchema creates or migrates the schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.InitSchema(s.db)
}
