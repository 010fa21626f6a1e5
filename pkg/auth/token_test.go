package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewTokenManager(t *testing.T) {
	_, err := NewTokenManager(nil, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager(testKey, 0)
	assert.Error(t, err)

	tm, err := NewTokenManager(testKey, DefaultTokenTTL)
	require.NoError(t, err)
	assert.Equal(t, 5*24*time.Hour, tm.TTL())
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm, err := NewTokenManager(testKey, time.Hour)
	require.NoError(t, err)

	token, err := tm.Issue("user-123")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")))

	userID, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenManager_Claims(t *testing.T) {
	tm, err := NewTokenManager(testKey, time.Hour)
	require.NoError(t, err)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return fixed }

	token, err := tm.Issue("user-123")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, fixed, claims.IssuedAt.Time.UTC())
	assert.Equal(t, fixed.Add(time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestTokenManager_IssueRequiresUserID(t *testing.T) {
	tm, err := NewTokenManager(testKey, time.Hour)
	require.NoError(t, err)

	_, err = tm.Issue("")
	assert.Error(t, err)
}

func TestTokenManager_VerifyRejects(t *testing.T) {
	tm, err := NewTokenManager(testKey, time.Hour)
	require.NoError(t, err)

	other, err := NewTokenManager([]byte("another-key-another-key-another-k"), time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("user-123")
	require.NoError(t, err)

	expiredManager, err := NewTokenManager(testKey, time.Hour)
	require.NoError(t, err)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredManager.Issue("user-123")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           "user-123",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:           "user-123",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(testKey)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-123"}).SignedString(testKey)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(testKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"foreign key", foreign},
		{"expired", expired},
		{"alg none", noneToken},
		{"unexpected alg", hs512},
		{"missing expiry", noExpiry},
		{"missing user id", noUser},
		{"malformed", "not.a.token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := tm.Verify(tt.token)
			require.Error(t, err)
			assert.Empty(t, userID)
			assert.Equal(t, KindInvalidToken, KindOf(err))
		})
	}
}
