package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/edgarhovh/auth-service/internal/model"
)

// UserRepo persists rows of the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a fully-populated user row.  The caller supplies the UUID
// and the bcrypt hash; duplicate email/phone unique-key violations are
// mapped to the corresponding sentinel errors.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	var phone any
	if u.Phone != "" {
		phone = u.Phone
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, phone, password_hash, status) VALUES (?,?,?,?,?)",
		u.ID, u.Email, phone, u.PasswordHash, u.Status)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			// MySQL names the violated key in the message (users.email /
			// users.phone), which is the only way to tell the two apart
			// without a second round trip.
			if strings.Contains(msg, "phone") {
				return ErrPhoneExists
			}
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByIdentifier fetches a user whose email or phone equals the supplied
// identifier.  Email matching is done on the stored lower-cased value.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,COALESCE(phone,''),password_hash,status,created_at,updated_at FROM users WHERE email=? OR phone=? LIMIT 1",
		strings.ToLower(identifier), identifier))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,COALESCE(phone,''),password_hash,status,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))))
}

// GetByPhone fetches a user by phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,COALESCE(phone,''),password_hash,status,created_at,updated_at FROM users WHERE phone=? LIMIT 1",
		strings.TrimSpace(phone)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,COALESCE(phone,''),password_hash,status,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id))
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=NOW() WHERE id=?",
		passwordHash, id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}
