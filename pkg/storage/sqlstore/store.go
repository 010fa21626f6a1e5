// Package sqlstore implements storage.UserStore on database/sql.
//
// The Postgres and SQLite backends share the queries in this package and
// differ only in how driver errors are classified (see Dialect).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/storage"
)

// Dialect classifies driver-specific errors
type Dialect interface {
	// Name of the backend, used in error messages
	Name() string
	// IsUniqueViolation reports whether err is a unique constraint violation
	IsUniqueViolation(err error) bool
	// IsInvalidID reports whether err means the id argument could not be
	// interpreted by the database (e.g. a non-UUID against a UUID column)
	IsInvalidID(err error) bool
}

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

// Store is a UserStore over a *sql.DB
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// New creates a Store. The users table must already exist.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		now:     time.Now,
	}
}

// DB returns the underlying connection pool
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// FindByEmail returns the user registered with email
func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := s.scanUser(s.db.QueryRowContext(ctx, query, storage.NormalizeEmail(email)))
	if err != nil {
		return nil, s.wrapLookup("find user by email", err)
	}
	return user, nil
}

// FindByID returns the user with the given id
func (s *Store) FindByID(ctx context.Context, id string) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := s.scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if s.dialect.IsInvalidID(err) {
			return nil, storage.ErrUserNotFound
		}
		return nil, s.wrapLookup("find user by id", err)
	}
	return user, nil
}

// Create inserts a new user
func (s *Store) Create(ctx context.Context, user *auth.User) error {
	prepared := *user
	storage.PrepareNewUser(&prepared, s.now())

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		prepared.ID,
		prepared.Name,
		prepared.Email,
		prepared.PasswordHash,
		string(prepared.Role),
		prepared.CreatedAt,
		prepared.UpdatedAt,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("%s: failed to create user: %w", s.dialect.Name(), err)
	}

	*user = prepared
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*auth.User, error) {
	var (
		user auth.User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = auth.Role(role)
	return &user, nil
}

func (s *Store) wrapLookup(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrUserNotFound
	}
	return fmt.Errorf("%s: failed to %s: %w", s.dialect.Name(), op, err)
}
