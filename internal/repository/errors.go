// Package repository persists the service's entities over database/sql.
// This file defines sentinel errors reused across repositories so higher
// layers can classify failures without inspecting driver error strings.
package repository

import "errors"

// ErrEmailExists is returned when an insert would violate the unique
// email constraint.  Surfaced to callers as an EMAIL_IN_USE conflict.
var ErrEmailExists = errors.New("email already exists")

// ErrPhoneExists is returned when an insert would violate the unique
// phone constraint.  Surfaced to callers as a PHONE_IN_USE conflict.
var ErrPhoneExists = errors.New("phone already exists")

// ErrNotFound is returned when a looked-up row does not exist, or no
// longer satisfies the lookup's conditions (revoked, consumed, expired).
var ErrNotFound = errors.New("not found")
