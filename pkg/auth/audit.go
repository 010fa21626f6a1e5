package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/platinummonkey/authgate/pkg/contextkeys"
	"github.com/platinummonkey/authgate/pkg/observability"
)

// AuditEvent is a security audit record for an authentication action
type AuditEvent struct {
	UserID       string    `json:"user_id,omitempty"`
	Email        string    `json:"email,omitempty"`
	Action       string    `json:"action"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditLogger writes audit events to the structured log
type AuditLogger struct {
	logger *observability.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *observability.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.WithField("component", "audit")}
}

// LogAction logs an audit event
func (al *AuditLogger) LogAction(ctx context.Context, event *AuditEvent) error {
	if event.Action == "" {
		return fmt.Errorf("action is required")
	}
	if event.Status == "" {
		return fmt.Errorf("status is required")
	}

	event.CreatedAt = time.Now()
	if event.RequestID == "" {
		event.RequestID = contextkeys.GetRequestID(ctx)
	}

	entry := al.logger.WithFields(map[string]interface{}{
		"action":     event.Action,
		"status":     event.Status,
		"user_id":    event.UserID,
		"email":      event.Email,
		"ip_address": event.IPAddress,
		"user_agent": event.UserAgent,
		"request_id": event.RequestID,
	})
	if event.ErrorMessage != "" {
		entry = entry.WithField("error", event.ErrorMessage)
	}

	if event.Status == StatusSuccess {
		entry.Info("audit event")
	} else {
		entry.Warn("audit event")
	}
	return nil
}

// LogFromRequest creates an audit event from an HTTP request
func (al *AuditLogger) LogFromRequest(r *http.Request, action, userID, email, status string, err error) error {
	event := &AuditEvent{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IPAddress: ClientIP(r),
		UserAgent: r.UserAgent(),
		Status:    status,
	}

	if err != nil {
		event.ErrorMessage = err.Error()
	}

	return al.LogAction(r.Context(), event)
}

// ClientIP returns the originating client address of r
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (if behind proxy)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Audit action constants
const (
	ActionRegister    = "user.register"
	ActionLogin       = "auth.login"
	ActionLogout      = "auth.logout"
	ActionAuthSuccess = "auth.success"
	ActionAuthFailure = "auth.failure"
)

// Status constants
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusDenied  = "denied"
)
