// Package sqlstore implements storage.Store on top of database/sql. The SQL is
// shared by every backend; a Dialect covers placeholder style and driver
// error codes.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements storage.Store for any database/sql driver.
type Store struct {
	db      *sql.DB
	q       querier
	tx      *sql.Tx
	dialect Dialect
}

// New wraps an open database. The schema must already be migrated.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, q: db, dialect: dialect}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn in a transaction. Nested calls join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx, tx: tx, dialect: s.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) atomic(ctx context.Context, fn func(ts *Store) error) error {
	return s.WithTx(ctx, func(tx storage.Store) error {
		return fn(tx.(*Store))
	})
}

// Close closes the database connection. It is a no-op inside a transaction.
func (s *Store) Close() error {
	if s.tx != nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.q.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// mustAffect turns a zero-row update or delete into storage.ErrNotFound.
func mustAffect(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return nil
}

// placeholders returns "?, ?, ?" with n marks, for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// maxInArgs caps the placeholders in one IN list. SQLite binds at most
// 32766 parameters per statement and Postgres 65535.
var maxInArgs = 500

// batches splits ids into runs of at most maxInArgs.
func batches(ids []string) [][]string {
	var out [][]string
	for len(ids) > maxInArgs {
		out = append(out, ids[:maxInArgs])
		ids = ids[maxInArgs:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
