// Package sqlite implements the user and auth repositories over an embedded
// SQLite database. It backs local development (DB_DRIVER=sqlite) and the
// store-level tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/oksasatya/users-api/internal/domain/repository"
	"github.com/oksasatya/users-api/internal/infrastructure/sqlite/migrations"
)

// Store owns the SQLite handle shared by both repositories.
//
// Writers are serialized: the pool holds a single connection and
// transactions start with BEGIN IMMEDIATE.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// embedded schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Users returns the user aggregate repository.
func (s *Store) Users() *UserRepository { return &UserRepository{db: s.db} }

// AuthUsers returns the login identity repository.
func (s *Store) AuthUsers() *AuthUserRepository { return &AuthUserRepository{db: s.db} }

func (s *Store) migrate() error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// mapUniqueViolation translates unique constraint failures into domain
// errors. SQLite names the violated column only in the message, e.g.
// "UNIQUE constraint failed: users.email".
func mapUniqueViolation(err error) error {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT:
	default:
		return err
	}
	msg := strings.ToLower(sqliteErr.Error())
	switch {
	case strings.Contains(msg, "auth_users.email"), strings.Contains(msg, " users.email"):
		return repository.ErrDuplicateEmail
	case strings.Contains(msg, " users.username"):
		return repository.ErrDuplicateUsername
	}
	return err
}
