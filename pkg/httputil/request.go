package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/platinummonkey/authgate/pkg/auth"
)

// ParseJSON decodes a single JSON object from the request body into dest.
// Decoding failures are returned as auth.InvalidInput.
func ParseJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return auth.InvalidInput("request body is required")
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return auth.InvalidInput("request body too large")
		case errors.Is(err, io.EOF):
			return auth.InvalidInput("request body is required")
		default:
			return &auth.Error{Kind: auth.KindInvalidInput, Message: "invalid JSON body", Err: err}
		}
	}
	if dec.More() {
		return auth.InvalidInput("request body must contain a single JSON object")
	}
	return nil
}

// Field is a named request value for presence validation
type Field struct {
	Name  string
	Value string
}

// RequireNonEmpty returns auth.InvalidInput naming every blank field
func RequireNonEmpty(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	switch len(missing) {
	case 0:
		return nil
	case 1:
		return auth.InvalidInput(fmt.Sprintf("%s is required", missing[0]))
	default:
		return auth.InvalidInput(fmt.Sprintf("%s are required", strings.Join(missing, ", ")))
	}
}
