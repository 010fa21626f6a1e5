package httputil

import (
	"net/http"

	"github.com/platinummonkey/authgate/pkg/auth"
)

// statusByKind is the only place an error kind is mapped to an HTTP status
var statusByKind = map[auth.Kind]int{
	auth.KindInvalidInput:    http.StatusBadRequest,
	auth.KindConflict:        http.StatusConflict,
	auth.KindUnknownAccount:  http.StatusBadRequest,
	auth.KindBadCredentials:  http.StatusNotFound,
	auth.KindUnauthenticated: http.StatusUnauthorized,
	auth.KindInvalidToken:    http.StatusUnauthorized,
	auth.KindInternal:        http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for err. Errors without an auth.Error
// in their chain are internal.
func StatusFor(err error) int {
	if status, ok := statusByKind[auth.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the JSON envelope for every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewErrorResponse builds the envelope for err. Internal details never
// reach the message.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   auth.KindOf(err).Code(),
		Message: auth.MessageOf(err),
	}
}

// WriteError writes the error envelope with the status mapped from err
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), NewErrorResponse(err))
}
