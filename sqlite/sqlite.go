// Package sqlite implements quizgraph.Store on an embedded SQLite database
// (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/meikuraledutech/quizgraph"
	_ "modernc.org/sqlite"
)

// LiteStore implements quizgraph.Store using SQLite.
type LiteStore struct {
	db *sql.DB
}

var _ quizgraph.Store = (*LiteStore)(nil)

// New wraps an already opened database. Foreign keys must be enabled on it.
func New(db *sql.DB) *LiteStore {
	return &LiteStore{db: db}
}

// Open opens the database at dsn with foreign keys and WAL enabled.
// Use "file::memory:" for a throwaway database.
func Open(dsn string) (*LiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("quizgraph: open sqlite: %w", err)
	}
	// Pragmas are per connection and in-memory databases are per connection too.
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("quizgraph: %s: %w", p, err)
		}
	}
	return &LiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *LiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database for custom queries.
func (s *LiteStore) DB() *sql.DB {
	return s.db
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *LiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit", err)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func wrap(op string, err error) error {
	return fmt.Errorf("quizgraph: %s: %w", op, err)
}

func affected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

// jsonArg binds a JSON column as TEXT, or NULL for a nil document.
func jsonArg(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}

// in returns "(?, ?, ...)" and the matching args.
func in(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
