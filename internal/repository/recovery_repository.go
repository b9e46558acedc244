package repository

import (
	"context"
	"database/sql"

	"github.com/edgarhovh/auth-service/internal/model"
)

// RecoveryRepo persists link-style recovery tokens.  These are independent
// of OTP codes: one long random credential per row, single use.
type RecoveryRepo struct{ DB *sql.DB }

func NewRecoveryRepo(db *sql.DB) *RecoveryRepo { return &RecoveryRepo{DB: db} }

// Insert stores a freshly issued recovery token record.
func (r *RecoveryRepo) Insert(ctx context.Context, t model.RecoveryToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO recovery_tokens (id, user_id, token_hash, expires_at) VALUES (?,?,?,?)",
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt)
	return err
}

// ConsumeByHash marks the active, unexpired token matching the digest as
// consumed and returns its owner.  Single use: the conditional UPDATE lets
// only one caller win; everyone else (including a replay of the same link)
// gets ErrNotFound.
func (r *RecoveryRepo) ConsumeByHash(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM recovery_tokens WHERE token_hash=? AND consumed_at IS NULL AND expires_at > NOW() LIMIT 1",
		tokenHash).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE recovery_tokens SET consumed_at=NOW() WHERE token_hash=? AND consumed_at IS NULL AND expires_at > NOW()",
		tokenHash)
	if err != nil {
		return "", err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", ErrNotFound
	}
	return userID, nil
}
