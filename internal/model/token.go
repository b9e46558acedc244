package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  Each row is
// the persisted proof of one issued refresh token.  The row id equals the
// token's jti claim, and only a SHA-256 hash of the serialized token is
// stored; the raw token never touches the database.  RotatedFrom links a
// token to its predecessor, forming the rotation chain for a session.
//
// Fields:
//  ID          – primary key, equal to the refresh token's jti.
//  UserID      – owner of the token.
//  TokenHash   – SHA-256 hex digest of the serialized token.
//  IssuedAt    – when the token was issued.
//  ExpiresAt   – expiration timestamp.
//  RevokedAt   – when the token was revoked (nil while active).
//  RotatedFrom – jti of the predecessor token (nil for the first link).
//  IP, UA      – client context captured at issuance.
type RefreshToken struct {
    ID          string     // refresh_tokens.id (= jti)
    UserID      string     // refresh_tokens.user_id
    TokenHash   string     // refresh_tokens.token_hash
    IssuedAt    time.Time  // refresh_tokens.issued_at
    ExpiresAt   time.Time  // refresh_tokens.expires_at
    RevokedAt   *time.Time // refresh_tokens.revoked_at (nullable)
    RotatedFrom *string    // refresh_tokens.rotated_from (nullable)
    IP          string     // refresh_tokens.ip
    UA          string     // refresh_tokens.ua
}

// RecoveryToken models a row in the `recovery_tokens` table.  It backs the
// link-style password reset flow and is independent of OTP codes: a single
// long random credential, stored hashed, consumable exactly once.
type RecoveryToken struct {
    ID         string     // recovery_tokens.id
    UserID     string     // recovery_tokens.user_id
    TokenHash  string     // recovery_tokens.token_hash
    ExpiresAt  time.Time  // recovery_tokens.expires_at
    ConsumedAt *time.Time // recovery_tokens.consumed_at (nullable)
    CreatedAt  time.Time  // recovery_tokens.created_at
}
