package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenTTL is the session lifetime when none is configured
	DefaultTokenTTL = 5 * 24 * time.Hour

	// SessionCookieName is the cookie that carries the session token
	SessionCookieName = "jwt"
)

// Claims is the session token payload: the standard claims plus the user id
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies session tokens
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenManager creates a token manager for the given HMAC key and lifetime
func NewTokenManager(key []byte, ttl time.Duration) (*TokenManager, error) {
	if len(key) == 0 {
		return nil, errors.New("signing key is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", ttl)
	}
	return &TokenManager{
		key: key,
		ttl: ttl,
		now: time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token embedding userID that expires after the TTL
func (tm *TokenManager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}

	now := tm.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	})

	signed, err := token.SignedString(tm.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// embedded user id. Failures are returned as KindInvalidToken errors.
func (tm *TokenManager) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return tm.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return "", InvalidToken(err)
	}

	if !token.Valid {
		return "", InvalidToken(errors.New("token is not valid"))
	}
	if claims.UserID == "" {
		return "", InvalidToken(errors.New("token has no user id"))
	}

	return claims.UserID, nil
}
