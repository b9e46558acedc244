// Package service implements the business logic of the identity service:
// session/token lifecycle, one-time-code challenges, role management and
// the register/login/logout and recovery orchestrations.  Storage is
// consumed through the narrow interfaces below so the SQL repositories can
// be swapped for fakes in tests.  Services hold no per-request state and
// are safe for concurrent use.
package service

import (
	"context"

	"github.com/edgarhovh/auth-service/internal/model"
)

// ClientContext carries the request metadata recorded alongside issued
// tokens and audit entries.
type ClientContext struct {
	IP string
	UA string
}

// UserStore is the slice of the user repository the orchestrators need.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	GetByIdentifier(ctx context.Context, identifier string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByPhone(ctx context.Context, phone string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// TokenStore persists refresh-token records.  Rotate must be atomic: of
// two concurrent calls naming the same predecessor, exactly one may
// succeed.
type TokenStore interface {
	Insert(ctx context.Context, rec model.RefreshToken) error
	FindActive(ctx context.Context, id, tokenHash string) (model.RefreshToken, error)
	Rotate(ctx context.Context, oldID, oldHash string, next model.RefreshToken) error
	RevokeByIDAndHash(ctx context.Context, id, tokenHash string) error
	RevokeByIDForUser(ctx context.Context, id, userID string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// RoleStore manages the role catalog and assignments.
type RoleStore interface {
	Ensure(ctx context.Context, id, name string) error
	List(ctx context.Context) ([]string, error)
	FindByName(ctx context.Context, name string) (model.Role, error)
	RolesForUser(ctx context.Context, userID string) ([]string, error)
	Assign(ctx context.Context, userID, roleID string) error
}

// RoleSource is the read-only subset of RoleStore the token service needs
// when re-deriving roles during rotation.
type RoleSource interface {
	RolesForUser(ctx context.Context, userID string) ([]string, error)
}

// OtpStore persists one-time-code records.  Consume must be conditional:
// only one caller may transition a record from unconsumed to consumed.
type OtpStore interface {
	Insert(ctx context.Context, c model.OtpCode) error
	LatestUnconsumed(ctx context.Context, destination, purpose string) (model.OtpCode, error)
	IncrementAttempts(ctx context.Context, id string) error
	Consume(ctx context.Context, id string) error
}

// RecoveryStore persists single-use link-style recovery tokens.
type RecoveryStore interface {
	Insert(ctx context.Context, t model.RecoveryToken) error
	ConsumeByHash(ctx context.Context, tokenHash string) (string, error)
}

// ActivityStore appends audit entries.
type ActivityStore interface {
	Insert(ctx context.Context, e model.ActivityLog) error
}
