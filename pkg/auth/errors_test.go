package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("user already exists")))
	assert.Equal(t, KindBadCredentials, KindOf(fmt.Errorf("login: %w", BadCredentials("wrong credentials"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKind_Code(t *testing.T) {
	assert.Equal(t, "invalid_input", KindInvalidInput.Code())
	assert.Equal(t, "user_exists", KindConflict.Code())
	assert.Equal(t, "user_not_found", KindUnknownAccount.Code())
	assert.Equal(t, "wrong_credentials", KindBadCredentials.Code())
	assert.Equal(t, "not_authenticated", KindUnauthenticated.Code())
	assert.Equal(t, "invalid_token", KindInvalidToken.Code())
	assert.Equal(t, "internal_error", Kind(99).Code())
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "wrong credentials", MessageOf(BadCredentials("wrong credentials")))
	assert.Equal(t, "invalid or expired token", MessageOf(InvalidToken(errors.New("token is expired"))))
	assert.Equal(t, "internal server error", MessageOf(Internal("failed to sign token", errors.New("key"))))
	assert.Equal(t, "internal server error", MessageOf(errors.New("pq: connection refused")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("token is expired")
	err := InvalidToken(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "token is expired")
	assert.Equal(t, "user not authenticated", Unauthenticated("user not authenticated").Error())
}
