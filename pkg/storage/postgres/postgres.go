// Package postgres provides the PostgreSQL user store backed by lib/pq.
package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/platinummonkey/authgate/pkg/storage/sqlstore"
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation      = pq.ErrorCode("23505")
	codeInvalidTextRepresent = pq.ErrorCode("22P02")
)

// Dialect classifies lib/pq errors
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsInvalidID reports a malformed UUID in a lookup by id
func (Dialect) IsInvalidID(err error) bool {
	return hasCode(err, codeInvalidTextRepresent)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

// NewUserStore returns a user store over an open PostgreSQL pool
func NewUserStore(db *sql.DB) *sqlstore.Store {
	return sqlstore.New(db, Dialect{})
}
