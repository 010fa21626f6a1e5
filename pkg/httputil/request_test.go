package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/authgate/pkg/auth"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name:        "valid JSON",
			body:        `{"name": "test"}`,
			expectError: false,
		},
		{
			name:        "unknown fields are ignored",
			body:        `{"name": "test", "extra": 1}`,
			expectError: false,
		},
		{
			name:        "invalid JSON",
			body:        `{invalid}`,
			expectError: true,
		},
		{
			name:        "empty body",
			body:        ``,
			expectError: true,
		},
		{
			name:        "trailing object",
			body:        `{"name": "a"}{"name": "b"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", bytes.NewBufferString(tt.body))
			var dest struct {
				Name string `json:"name"`
			}

			err := ParseJSON(req, &dest)

			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, auth.KindInvalidInput, auth.KindOf(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "test", dest.Name)
			}
		})
	}
}

func TestParseJSON_BodyTooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"name": "`+strings.Repeat("a", 100)+`"}`))
	req.Body = http.MaxBytesReader(w, req.Body, 16)

	var dest map[string]string
	err := ParseJSON(req, &dest)

	require.Error(t, err)
	assert.Equal(t, auth.KindInvalidInput, auth.KindOf(err))
	assert.Equal(t, "request body too large", auth.MessageOf(err))
}

func TestRequireNonEmpty(t *testing.T) {
	assert.NoError(t, RequireNonEmpty(Field{"email", "a@x.io"}, Field{"password", "pw"}))

	err := RequireNonEmpty(Field{"email", "a@x.io"}, Field{"password", "   "})
	require.Error(t, err)
	assert.Equal(t, auth.KindInvalidInput, auth.KindOf(err))
	assert.Equal(t, "password is required", auth.MessageOf(err))

	err = RequireNonEmpty(Field{"name", ""}, Field{"email", ""}, Field{"password", "pw"})
	assert.Equal(t, "name, email are required", auth.MessageOf(err))
}
