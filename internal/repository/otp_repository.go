package repository

import (
	"context"
	"database/sql"

	"github.com/edgarhovh/auth-service/internal/model"
)

// OtpRepo owns the `otp_codes` table exclusively; no other component
// reads or writes these rows.
type OtpRepo struct{ DB *sql.DB }

func NewOtpRepo(db *sql.DB) *OtpRepo { return &OtpRepo{DB: db} }

// Insert stores a freshly issued code record.
func (r *OtpRepo) Insert(ctx context.Context, c model.OtpCode) error {
	var userID any
	if c.UserID != "" {
		userID = c.UserID
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO otp_codes (id, user_id, destination, channel, code_hash, purpose, expires_at, attempts)
		 VALUES (?,?,?,?,?,?,?,0)`,
		c.ID, userID, c.Destination, c.Channel, c.CodeHash, c.Purpose, c.ExpiresAt)
	return err
}

// LatestUnconsumed returns the most recently created unconsumed record for
// the (destination, purpose) pair.  Older unconsumed codes are shadowed and
// can never verify, matching the resend behavior callers expect.
func (r *OtpRepo) LatestUnconsumed(ctx context.Context, destination, purpose string) (model.OtpCode, error) {
	var c model.OtpCode
	var userID sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, destination, channel, code_hash, purpose, expires_at, consumed_at, attempts, created_at
		 FROM otp_codes
		 WHERE destination=? AND purpose=? AND consumed_at IS NULL
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		destination, purpose).Scan(&c.ID, &userID, &c.Destination, &c.Channel, &c.CodeHash,
		&c.Purpose, &c.ExpiresAt, &c.ConsumedAt, &c.Attempts, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return model.OtpCode{}, ErrNotFound
	}
	c.UserID = userID.String
	return c, err
}

// IncrementAttempts bumps the failed-attempt counter on a record.
func (r *OtpRepo) IncrementAttempts(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE otp_codes SET attempts = attempts + 1 WHERE id=?", id)
	return err
}

// Consume marks a record consumed.  The conditional WHERE makes the
// transition one-way and single-winner: a concurrent verifier whose UPDATE
// matches zero rows gets ErrNotFound instead of a second success.
func (r *OtpRepo) Consume(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE otp_codes SET consumed_at=NOW() WHERE id=? AND consumed_at IS NULL", id)
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
