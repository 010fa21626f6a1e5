package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"message": "success"}

	err := WriteJSON(w, http.StatusOK, data)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"success"}`, w.Body.String())
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	assert.NoError(t, WriteCreated(w, map[string]bool{"success": true}))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	assert.NoError(t, WriteSuccess(w, map[string]bool{"success": true}))
	assert.Equal(t, http.StatusOK, w.Code)
}
