package auth

import (
	"errors"
	"fmt"
)

// Kind classifies authentication failures. pkg/httputil maps each Kind to a
// single HTTP status.
type Kind int

const (
	// KindInternal covers unexpected store, crypto or transport failures
	KindInternal Kind = iota
	// KindInvalidInput is a malformed or incomplete request body
	KindInvalidInput
	// KindConflict is a registration for an email that is already taken
	KindConflict
	// KindUnknownAccount is a login for an email with no account
	KindUnknownAccount
	// KindBadCredentials is a login with the wrong password
	KindBadCredentials
	// KindUnauthenticated is a missing session or a session whose user is gone
	KindUnauthenticated
	// KindInvalidToken is a session token that fails verification
	KindInvalidToken
)

var kindCodes = map[Kind]string{
	KindInternal:        "internal_error",
	KindInvalidInput:    "invalid_input",
	KindConflict:        "user_exists",
	KindUnknownAccount:  "user_not_found",
	KindBadCredentials:  "wrong_credentials",
	KindUnauthenticated: "not_authenticated",
	KindInvalidToken:    "invalid_token",
}

// Code returns the machine-readable code sent in error responses
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindInternal]
}

func (k Kind) String() string {
	return k.Code()
}

// Error is a classified authentication error. Message is safe to show to
// clients; Err is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message for err. Internal and
// unclassified errors get a generic message.
func MessageOf(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) && authErr.Kind != KindInternal && authErr.Message != "" {
		return authErr.Message
	}
	return "internal server error"
}

// InvalidInput creates a KindInvalidInput error
func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// Conflict creates a KindConflict error
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// UnknownAccount creates a KindUnknownAccount error
func UnknownAccount(message string) *Error {
	return &Error{Kind: KindUnknownAccount, Message: message}
}

// BadCredentials creates a KindBadCredentials error
func BadCredentials(message string) *Error {
	return &Error{Kind: KindBadCredentials, Message: message}
}

// Unauthenticated creates a KindUnauthenticated error
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// InvalidToken creates a KindInvalidToken error wrapping the verification failure
func InvalidToken(err error) *Error {
	return &Error{Kind: KindInvalidToken, Message: "invalid or expired token", Err: err}
}

// Internal creates a KindInternal error wrapping an unexpected failure
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
