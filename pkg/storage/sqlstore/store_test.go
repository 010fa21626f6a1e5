package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/storage"
)

var errDuplicate = errors.New("duplicate key")
var errBadID = errors.New("bad id")

type fakeDialect struct{}

func (fakeDialect) Name() string                     { return "fake" }
func (fakeDialect) IsUniqueViolation(err error) bool { return errors.Is(err, errDuplicate) }
func (fakeDialect) IsInvalidID(err error) bool       { return errors.Is(err, errBadID) }

var columns = []string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, fakeDialect{}), mock
}

func TestStore_FindByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows(columns).
		AddRow("u-1", "Ann", "ann@x.io", "$2a$hash", "USER", created, created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("ann@x.io").
		WillReturnRows(rows)

	user, err := store.FindByEmail(context.Background(), "  Ann@X.io ")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "$2a$hash", user.PasswordHash)
	assert.Equal(t, auth.RoleUser, user.Role)
	assert.Equal(t, created, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindByEmail_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@x.io").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := store.FindByEmail(context.Background(), "nobody@x.io")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store, mock := newMockStore(t)
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("u-1", "Ann", "ann@x.io", "h", "ADMIN", now, now))

		user, err := store.FindByID(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, user.Role)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs("not-a-uuid").
			WillReturnError(errBadID)

		_, err := store.FindByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		store, mock := newMockStore(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs("u-1").
			WillReturnError(boom)

		_, err := store.FindByID(context.Background(), "u-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestStore_Create(t *testing.T) {
	store, mock := newMockStore(t)
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "Ann", "ann@x.io", "digest", "USER", fixed, fixed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &auth.User{Name: "Ann", Email: "Ann@x.io", PasswordHash: "digest"}
	require.NoError(t, store.Create(context.Background(), user))

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ann@x.io", user.Email)
	assert.Equal(t, auth.RoleUser, user.Role)
	assert.Equal(t, fixed, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create_Duplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errDuplicate)

	user := &auth.User{Name: "Ann", Email: "ann@x.io", PasswordHash: "digest"}
	err := store.Create(context.Background(), user)
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
	assert.Empty(t, user.ID, "caller's user must be untouched on failure")
}
