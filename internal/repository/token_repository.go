package repository

import (
	"context"
	"database/sql"

	"github.com/edgarhovh/auth-service/internal/model"
)

// TokenRepo persists refresh-token records.  Row ids equal the token's jti
// claim and only the SHA-256 digest of the serialized token is stored.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Insert stores the record of a newly issued refresh token.
func (r *TokenRepo) Insert(ctx context.Context, rec model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, issued_at, expires_at, rotated_from, ip, ua)
		 VALUES (?,?,?,?,?,?,?,?)`,
		rec.ID, rec.UserID, rec.TokenHash, rec.IssuedAt, rec.ExpiresAt, rec.RotatedFrom, rec.IP, rec.UA)
	return err
}

// FindActive returns the non-revoked record matching both the token id and
// the digest.  A revoked, replayed or forged token yields ErrNotFound; the
// caller cannot tell the cases apart, which is intentional.
func (r *TokenRepo) FindActive(ctx context.Context, id, tokenHash string) (model.RefreshToken, error) {
	var rec model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, issued_at, expires_at, revoked_at, rotated_from, COALESCE(ip,''), COALESCE(ua,'')
		 FROM refresh_tokens
		 WHERE id=? AND token_hash=? AND revoked_at IS NULL LIMIT 1`,
		id, tokenHash).Scan(&rec.ID, &rec.UserID, &rec.TokenHash, &rec.IssuedAt, &rec.ExpiresAt,
		&rec.RevokedAt, &rec.RotatedFrom, &rec.IP, &rec.UA)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrNotFound
	}
	return rec, err
}

// Rotate atomically revokes the predecessor record and inserts its
// successor.  The conditional UPDATE only matches a still-active row, so
// of two concurrent rotations of the same predecessor exactly one commits;
// the other observes zero affected rows and fails with ErrNotFound before
// inserting anything.
func (r *TokenRepo) Rotate(ctx context.Context, oldID, oldHash string, next model.RefreshToken) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE id=? AND token_hash=? AND revoked_at IS NULL",
		oldID, oldHash)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, issued_at, expires_at, rotated_from, ip, ua)
		 VALUES (?,?,?,?,?,?,?,?)`,
		next.ID, next.UserID, next.TokenHash, next.IssuedAt, next.ExpiresAt, next.RotatedFrom, next.IP, next.UA)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// RevokeByIDAndHash revokes the record matching both identifiers.  Returns
// ErrNotFound when no active record matched, so a replayed logout cannot
// masquerade as a successful one.
func (r *TokenRepo) RevokeByIDAndHash(ctx context.Context, id, tokenHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE id=? AND token_hash=? AND revoked_at IS NULL",
		id, tokenHash)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeByIDForUser revokes a single token by id, scoped to its owner so
// one user cannot kill another's session.  Idempotent: revoking an
// already-revoked or unknown token succeeds silently.
func (r *TokenRepo) RevokeByIDForUser(ctx context.Context, id, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE id=? AND user_id=? AND revoked_at IS NULL",
		id, userID)
	return err
}

// RevokeAllForUser revokes all of a user's active tokens.  Idempotent.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL", userID)
	return err
}
