package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/authgate/pkg/auth"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", auth.InvalidInput("email is required"), http.StatusBadRequest},
		{"conflict", auth.Conflict("user already exists"), http.StatusConflict},
		{"unknown account", auth.UnknownAccount("user not found, please register."), http.StatusBadRequest},
		{"bad credentials", auth.BadCredentials("wrong credentials"), http.StatusNotFound},
		{"unauthenticated", auth.Unauthenticated("user not authenticated"), http.StatusUnauthorized},
		{"invalid token", auth.InvalidToken(errors.New("token is expired")), http.StatusUnauthorized},
		{"internal", auth.Internal("failed to hash password", errors.New("boom")), http.StatusInternalServerError},
		{"unclassified", errors.New("connection refused"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("login: %w", auth.BadCredentials("wrong credentials")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.err))
		})
	}
}

func TestStatusFor_EveryKindMapped(t *testing.T) {
	kinds := []auth.Kind{
		auth.KindInternal,
		auth.KindInvalidInput,
		auth.KindConflict,
		auth.KindUnknownAccount,
		auth.KindBadCredentials,
		auth.KindUnauthenticated,
		auth.KindInvalidToken,
	}
	for _, k := range kinds {
		_, ok := statusByKind[k]
		assert.True(t, ok, "kind %s has no status", k)
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, auth.Conflict("user already exists"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "user_exists", resp.Error)
	assert.Equal(t, "user already exists", resp.Message)
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, auth.Internal("failed to query users", errors.New("pq: password authentication failed for user \"admin\"")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.NotContains(t, w.Body.String(), "failed to query users")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal_error", resp.Error)
	assert.Equal(t, "internal server error", resp.Message)
}
