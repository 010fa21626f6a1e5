package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/contextkeys"
	"github.com/platinummonkey/authgate/pkg/httputil"
	"github.com/platinummonkey/authgate/pkg/observability"
	"github.com/platinummonkey/authgate/pkg/storage"
)

// Decision outcomes, used as metric labels
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeMissingToken  = "missing_token"
	OutcomeInvalidToken  = "invalid_token"
	OutcomeUnknownUser   = "unknown_user"
	OutcomeError         = "error"
)

// TokenVerifier resolves a session token to a user id
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder loads a user by id
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
}

// AuthMiddleware authenticates requests from the session cookie
type AuthMiddleware struct {
	verifier   TokenVerifier
	users      UserFinder
	cookieName string
	logger     *observability.Logger
	metrics    *observability.Metrics
	audit      *auth.AuditLogger
}

// Option configures an AuthMiddleware
type Option func(*AuthMiddleware)

// WithLogger sets the logger for rejected and failed requests
func WithLogger(logger *observability.Logger) Option {
	return func(m *AuthMiddleware) { m.logger = logger }
}

// WithMetrics records each decision
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *AuthMiddleware) { m.metrics = metrics }
}

// WithAuditLogger records denied requests to the audit trail
func WithAuditLogger(audit *auth.AuditLogger) Option {
	return func(m *AuthMiddleware) { m.audit = audit }
}

// WithCookieName overrides the session cookie name
func WithCookieName(name string) Option {
	return func(m *AuthMiddleware) { m.cookieName = name }
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(verifier TokenVerifier, users UserFinder, opts ...Option) *AuthMiddleware {
	m := &AuthMiddleware{
		verifier:   verifier,
		users:      users,
		cookieName: auth.SessionCookieName,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	m.logger = m.logger.WithField("component", "auth_middleware")
	return m
}

// Authenticate resolves the request's session to a user. It writes
// nothing; the returned error is classified for httputil.WriteError.
func (m *AuthMiddleware) Authenticate(r *http.Request) (*auth.User, error) {
	user, _, err := m.authenticate(r)
	return user, err
}

func (m *AuthMiddleware) authenticate(r *http.Request) (*auth.User, string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, OutcomeMissingToken, auth.Unauthenticated("user not authenticated")
	}

	userID, err := m.verifier.Verify(cookie.Value)
	if err != nil {
		if auth.KindOf(err) != auth.KindInvalidToken {
			err = auth.InvalidToken(err)
		}
		return nil, OutcomeInvalidToken, err
	}

	user, err := m.users.FindByID(r.Context(), userID)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, OutcomeUnknownUser, auth.Unauthenticated("user not found")
	}
	if err != nil {
		return nil, OutcomeError, auth.Internal("failed to load user", err)
	}

	return user, OutcomeAuthenticated, nil
}

// Handler wraps next so it only runs for authenticated requests. Rejected
// requests get exactly one error response and next is not called.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, outcome, err := m.authenticate(r)
		m.metrics.RecordAuthDecision(outcome)

		if err != nil {
			m.reject(w, r, outcome, err)
			return
		}

		ctx := contextkeys.WithUser(r.Context(), user)
		ctx = contextkeys.WithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, outcome string, err error) {
	logger := m.logger.WithFields(map[string]interface{}{
		"outcome":    outcome,
		"path":       r.URL.Path,
		"request_id": observability.GetRequestID(r.Context()),
	}).WithError(err)

	if outcome == OutcomeError {
		logger.Error("failed to authenticate request")
	} else {
		logger.Debug("request not authenticated")
	}

	if m.audit != nil && outcome != OutcomeMissingToken && outcome != OutcomeError {
		if auditErr := m.audit.LogFromRequest(r, auth.ActionAuthFailure, "", "", auth.StatusDenied, err); auditErr != nil {
			m.logger.WithError(auditErr).Warn("failed to write audit event")
		}
	}

	httputil.WriteError(w, err)
}

// GetUser returns the user attached by AuthMiddleware, or nil
func GetUser(r *http.Request) *auth.User {
	return UserFromContext(r.Context())
}

// UserFromContext returns the authenticated user stored in ctx, or nil
func UserFromContext(ctx context.Context) *auth.User {
	user, _ := ctx.Value(contextkeys.UserKey).(*auth.User)
	return user
}
