// Package apperr defines the tagged error type shared by services and
// handlers.  Services construct errors with a Kind and a short stable code;
// the HTTP layer translates the Kind into a status in exactly one place.
// Unexpected failures (store unreachable, signing key missing) must be
// wrapped as KindServer so their detail never reaches the caller.
package apperr

import (
    "errors"
    "net/http"
)

// Kind enumerates the error taxonomy.
type Kind string

const (
    KindValidation      Kind = "VALIDATION"       // malformed input
    KindUnauthorized    Kind = "UNAUTHORIZED"     // missing/invalid/expired/revoked token
    KindForbidden       Kind = "FORBIDDEN"        // valid identity, insufficient permission
    KindConflict        Kind = "CONFLICT"         // duplicate email/phone
    KindNotFound        Kind = "NOT_FOUND"        // absent where disclosure is acceptable
    KindRateLimited     Kind = "RATE_LIMITED"     // window exceeded, carries retry-after
    KindOTPInvalid      Kind = "OTP_INVALID"      // code missing, expired or mismatched (one signal)
    KindTokenInvalid    Kind = "TOKEN_INVALID"    // malformed/expired/consumed recovery token
    KindAccountDisabled Kind = "ACCOUNT_DISABLED" // account exists but is not active
    KindServer          Kind = "SERVER_ERROR"     // unexpected store/crypto failure
)

// Error carries a taxonomy kind, a machine-readable code and a safe,
// human-readable message.  RetryAfter is only set for KindRateLimited.
// The wrapped cause, if any, is for logs and never serialized.
type Error struct {
    Kind       Kind
    Code       string
    Message    string
    RetryAfter int // seconds, 0 unless rate limited
    cause      error
}

func (e *Error) Error() string {
    if e.cause != nil {
        return e.Message + ": " + e.cause.Error()
    }
    return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with a kind, stable code and message.
func New(kind Kind, code, message string) *Error {
    return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a new Error.  Used for KindServer so the
// underlying failure stays available for logging.
func Wrap(kind Kind, code, message string, cause error) *Error {
    return &Error{Kind: kind, Code: code, Message: message, cause: cause}
}

// RateLimited builds the RATE_LIMITED error carrying a retry-after hint.
func RateLimited(retryAfter int) *Error {
    return &Error{
        Kind:       KindRateLimited,
        Code:       "RATE_LIMITED",
        Message:    "too many requests",
        RetryAfter: retryAfter,
    }
}

// KindOf extracts the Kind from any error.  Non-tagged errors are treated
// as server errors, matching the propagation policy: anything a service did
// not classify deliberately is an internal failure.
func KindOf(err error) Kind {
    var e *Error
    if errors.As(err, &e) {
        return e.Kind
    }
    return KindServer
}

// From returns the tagged error inside err, or a generic server error when
// err was never classified.  Handlers call this before serializing.
func From(err error) *Error {
    var e *Error
    if errors.As(err, &e) {
        return e
    }
    return &Error{Kind: KindServer, Code: "SERVER_ERROR", Message: "internal server error", cause: err}
}

// HTTPStatus maps a Kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
    switch kind {
    case KindValidation:
        return http.StatusBadRequest
    case KindUnauthorized:
        return http.StatusUnauthorized
    case KindForbidden:
        return http.StatusForbidden
    case KindConflict:
        return http.StatusConflict
    case KindNotFound:
        return http.StatusNotFound
    case KindRateLimited:
        return http.StatusTooManyRequests
    case KindOTPInvalid, KindTokenInvalid:
        return http.StatusUnprocessableEntity
    case KindAccountDisabled:
        return http.StatusForbidden
    default:
        return http.StatusInternalServerError
    }
}
