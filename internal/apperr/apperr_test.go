package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfAndFrom(t *testing.T) {
	err := New(KindConflict, "EMAIL_IN_USE", "email already registered")
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "EMAIL_IN_USE", From(err).Code)

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, "EMAIL_IN_USE", From(wrapped).Code)
}

func TestUnclassifiedErrorIsServer(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, KindServer, KindOf(plain))

	e := From(plain)
	assert.Equal(t, "SERVER_ERROR", e.Code)
	assert.Equal(t, "internal server error", e.Message)
	// The cause is preserved for logging but the message stays generic.
	assert.ErrorIs(t, e, plain)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindServer, "TOKEN_PERSIST_FAILED", "could not issue session", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRateLimitedCarriesRetryAfter(t *testing.T) {
	err := RateLimited(42)
	assert.Equal(t, KindRateLimited, err.Kind)
	assert.Equal(t, 42, err.RetryAfter)
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindUnauthorized:    http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindConflict:        http.StatusConflict,
		KindNotFound:        http.StatusNotFound,
		KindRateLimited:     http.StatusTooManyRequests,
		KindOTPInvalid:      http.StatusUnprocessableEntity,
		KindTokenInvalid:    http.StatusUnprocessableEntity,
		KindAccountDisabled: http.StatusForbidden,
		KindServer:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), string(kind))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Kind("UNKNOWN")))
}
