package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/authgate/pkg/auth"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup key
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Create when the email is already registered
	ErrEmailTaken = errors.New("email already registered")
)

// UserReader looks up users by their unique keys
type UserReader interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	FindByID(ctx context.Context, id string) (*auth.User, error)
}

// UserWriter persists new users
type UserWriter interface {
	// Create stores user, filling in ID, Role and timestamps when unset.
	// Returns ErrEmailTaken if the email already exists.
	Create(ctx context.Context, user *auth.User) error
}

// UserStore is the credential store accessor used by handlers and middleware
type UserStore interface {
	UserReader
	UserWriter
}

// Backend types
const (
	TypeMemory   = "memory"
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Config for storage backend
type Config struct {
	Type string // "memory", "postgres", "sqlite"

	// PostgreSQL config
	PostgresURL         string
	PostgresMaxConns    int
	PostgresMinConns    int
	PostgresTimeout     time.Duration
	PostgresMaxLifetime time.Duration

	// SQLite config
	SQLitePath string

	// AutoMigrate creates the users table on startup
	AutoMigrate bool

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Cache config
	CacheEnabled bool
	CacheTTL     time.Duration
	L1CacheSize  int // Entries
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:                TypeMemory,
		PostgresMaxConns:    20,
		PostgresMinConns:    2,
		PostgresTimeout:     10 * time.Second,
		PostgresMaxLifetime: time.Hour,
		SQLitePath:          "authgate.db",
		AutoMigrate:         true,
		RedisDB:             0,
		RedisMaxRetries:     3,
		RedisPoolSize:       10,
		CacheEnabled:        true,
		CacheTTL:            5 * time.Minute,
		L1CacheSize:         10000,
	}
}

// NormalizeEmail canonicalizes an email for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PrepareNewUser fills in the fields a store assigns at creation
func PrepareNewUser(user *auth.User, now time.Time) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = auth.RoleUser
	}
	user.Email = NormalizeEmail(user.Email)
	now = now.UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
}
