// Package auth provides the credential primitives for authgate.
//
// # Overview
//
// This package owns the user model, the password hasher, the session token
// manager and the error taxonomy shared by handlers and middleware. It has no
// HTTP or storage dependencies; those live in pkg/api, pkg/middleware and
// pkg/storage.
//
// # Users
//
// A User carries the bcrypt digest of its password. Responses never serialize
// a User directly:
//
//	httputil.WriteJSON(w, http.StatusOK, user.Public())
//
// # Passwords
//
//	hasher := auth.NewBcryptHasher(12)
//	digest, err := hasher.Hash("secret123")
//	ok := hasher.Verify("secret123", digest)
//
// # Session Tokens
//
// Tokens are HS256 JWTs with a single custom claim, the user id:
//
//	tm, err := auth.NewTokenManager([]byte(cfg.SigningKey), 5*24*time.Hour)
//	token, err := tm.Issue(user.ID)
//	userID, err := tm.Verify(token)
//
// Tokens are stateless. There is no revocation list, so a token stays valid
// until it expires even after logout.
//
// # Errors
//
// Handlers return *auth.Error values built by the helpers in errors.go.
// pkg/httputil maps each Kind to exactly one HTTP status.
//
// # Related Packages
//
//   - pkg/middleware: cookie authentication middleware
//   - pkg/api: register/login/logout/check handlers
//   - pkg/storage: user persistence
package auth
