package api

import (
	"net/http"
	"time"

	"github.com/platinummonkey/authgate/pkg/auth"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// DefaultCookieConfig returns the production cookie settings
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Name:   auth.SessionCookieName,
		TTL:    auth.DefaultTokenTTL,
		Secure: true,
	}
}

// Session returns the cookie carrying token
func (c CookieConfig) Session(token string) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Cleared returns a cookie that makes the browser drop the session.
// Attributes must match Session or some browsers keep the original.
func (c CookieConfig) Cleared() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
