package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/httputil"
	"github.com/platinummonkey/authgate/pkg/middleware"
	"github.com/platinummonkey/authgate/pkg/observability"
	"github.com/platinummonkey/authgate/pkg/storage"
)

// Operation names, used for metrics and logs
const (
	opRegister = "register"
	opLogin    = "login"
	opLogout   = "logout"
	opCheck    = "check"
)

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthDeps are the collaborators of AuthHandlers. Logger, Metrics and
// Audit are optional.
type AuthDeps struct {
	Store      storage.UserStore
	Hasher     auth.PasswordHasher
	Tokens     TokenIssuer
	Middleware *middleware.AuthMiddleware
	Cookies    CookieConfig
	Logger     *observability.Logger
	Metrics    *observability.Metrics
	Audit      *auth.AuditLogger
}

// AuthHandlers handles the register, login, logout and check endpoints
type AuthHandlers struct {
	store      storage.UserStore
	hasher     auth.PasswordHasher
	tokens     TokenIssuer
	middleware *middleware.AuthMiddleware
	cookies    CookieConfig
	logger     *observability.Logger
	metrics    *observability.Metrics
	audit      *auth.AuditLogger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(deps AuthDeps) *AuthHandlers {
	logger := deps.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if deps.Cookies.Name == "" {
		deps.Cookies.Name = auth.SessionCookieName
	}
	return &AuthHandlers{
		store:      deps.Store,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		middleware: deps.Middleware,
		cookies:    deps.Cookies,
		logger:     logger.WithField("component", "auth_handlers"),
		metrics:    deps.Metrics,
		audit:      deps.Audit,
	}
}

// RegisterRoutes registers authentication routes under /api/v1/auth.
// Routes go on the root router so that method mismatches reach its 405 handler.
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/auth/register", h.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/auth/login", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/auth/logout", h.Logout).Methods(http.MethodPost)

	var check http.Handler = http.HandlerFunc(h.Check)
	if h.middleware != nil {
		check = h.middleware.Handler(check)
	}
	router.Handle("/api/v1/auth/check", check).Methods(http.MethodGet)
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		h.fail(w, r, opRegister, "", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = storage.NormalizeEmail(req.Email)

	if err := validateRegistration(
		httputil.Field{Name: "name", Value: req.Name},
		httputil.Field{Name: "email", Value: req.Email},
		httputil.Field{Name: "password", Value: req.Password},
	); err != nil {
		h.fail(w, r, opRegister, req.Email, err)
		return
	}

	ctx := r.Context()

	_, err := h.store.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		h.fail(w, r, opRegister, req.Email, auth.Conflict(msgUserExists))
		return
	case !errors.Is(err, storage.ErrUserNotFound):
		h.fail(w, r, opRegister, req.Email, auth.Internal("failed to look up user", err))
		return
	}

	start := time.Now()
	digest, err := h.hasher.Hash(req.Password)
	h.metrics.ObservePasswordHash("hash", time.Since(start))
	if err != nil {
		h.fail(w, r, opRegister, req.Email, auth.Internal("failed to hash password", err))
		return
	}

	user := &auth.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: digest,
		Role:         auth.RoleUser,
	}
	if err := h.store.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			// lost a race with a concurrent registration
			h.fail(w, r, opRegister, req.Email, auth.Conflict(msgUserExists))
			return
		}
		h.fail(w, r, opRegister, req.Email, auth.Internal("failed to create user", err))
		return
	}

	if !h.startSession(w, r, opRegister, user) {
		return
	}

	h.succeed(r, opRegister, auth.ActionRegister, user)
	httputil.WriteCreated(w, AuthResponse{
		Success: true,
		Message: MsgUserCreated,
		User:    user.Public(),
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		h.fail(w, r, opLogin, "", err)
		return
	}
	req.Email = storage.NormalizeEmail(req.Email)

	if err := httputil.RequireNonEmpty(
		httputil.Field{Name: "email", Value: req.Email},
		httputil.Field{Name: "password", Value: req.Password},
	); err != nil {
		h.fail(w, r, opLogin, req.Email, err)
		return
	}

	user, err := h.store.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, storage.ErrUserNotFound) {
		h.fail(w, r, opLogin, req.Email, auth.UnknownAccount(msgUnknownAccount))
		return
	}
	if err != nil {
		h.fail(w, r, opLogin, req.Email, auth.Internal("failed to look up user", err))
		return
	}

	start := time.Now()
	ok := h.hasher.Verify(req.Password, user.PasswordHash)
	h.metrics.ObservePasswordHash("verify", time.Since(start))
	if !ok {
		h.fail(w, r, opLogin, req.Email, auth.BadCredentials(msgWrongCredentials))
		return
	}

	if !h.startSession(w, r, opLogin, user) {
		return
	}

	h.succeed(r, opLogin, auth.ActionLogin, user)
	httputil.WriteSuccess(w, AuthResponse{
		Success: true,
		Message: MsgUserLoggedIn,
		User:    user.Public(),
	})
}

// Logout handles POST /api/v1/auth/logout. It always succeeds.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookies.Cleared())

	h.metrics.RecordAuthOperation(opLogout, auth.StatusSuccess)
	h.auditLog(r, auth.ActionLogout, "", "", auth.StatusSuccess, nil)
	httputil.WriteSuccess(w, AuthResponse{
		Success: true,
		Message: MsgUserLoggedOut,
	})
}

// Check handles GET /api/v1/auth/check and reports the user attached by
// the auth middleware.
func (h *AuthHandlers) Check(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		h.fail(w, r, opCheck, "", auth.Unauthenticated(msgNotAuthenticated))
		return
	}

	h.metrics.RecordAuthOperation(opCheck, auth.StatusSuccess)
	httputil.WriteSuccess(w, AuthResponse{
		Success: true,
		Message: MsgUserAuthenticated,
		User:    user.Public(),
	})
}

// startSession issues a token for user and sets the session cookie. On
// failure it writes the error response and returns false.
func (h *AuthHandlers) startSession(w http.ResponseWriter, r *http.Request, op string, user *auth.User) bool {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.fail(w, r, op, user.Email, auth.Internal("failed to issue session token", err))
		return false
	}
	http.SetCookie(w, h.cookies.Session(token))
	return true
}

// validateRegistration requires every field to be non-blank and bounds the
// password to what bcrypt can hash. Login skips the bound: an overlong
// password simply fails comparison.
func validateRegistration(fields ...httputil.Field) error {
	if err := httputil.RequireNonEmpty(fields...); err != nil {
		return err
	}
	for _, f := range fields {
		if f.Name == "password" && len(f.Value) > auth.MaxPasswordBytes {
			return auth.InvalidInput(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
		}
	}
	return nil
}

func (h *AuthHandlers) succeed(r *http.Request, op, action string, user *auth.User) {
	h.metrics.RecordAuthOperation(op, auth.StatusSuccess)
	h.auditLog(r, action, user.ID, user.Email, auth.StatusSuccess, nil)
}

// fail records and writes a failed operation
func (h *AuthHandlers) fail(w http.ResponseWriter, r *http.Request, op, email string, err error) {
	kind := auth.KindOf(err)
	h.metrics.RecordAuthOperation(op, kind.Code())

	logger := h.logger.WithFields(map[string]interface{}{
		"request_id": observability.GetRequestID(r.Context()),
		"operation":  op,
		"code":       kind.Code(),
	}).WithError(err)
	if kind == auth.KindInternal {
		logger.Error("auth operation failed")
	} else {
		logger.Debug("auth operation rejected")
	}

	switch op {
	case opRegister:
		h.auditLog(r, auth.ActionRegister, "", email, auth.StatusFailure, err)
	case opLogin:
		h.auditLog(r, auth.ActionLogin, "", email, auth.StatusFailure, err)
	}

	httputil.WriteError(w, err)
}

func (h *AuthHandlers) auditLog(r *http.Request, action, userID, email, status string, err error) {
	if h.audit == nil {
		return
	}
	if auditErr := h.audit.LogFromRequest(r, action, userID, email, status, err); auditErr != nil {
		h.logger.WithError(auditErr).Warn("failed to write audit event")
	}
}
