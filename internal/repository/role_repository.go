package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edgarhovh/auth-service/internal/model"
)

// RoleRepo persists the role catalog and user-role assignments.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Ensure inserts a role if it does not already exist.  Safe to run on
// every startup; an existing name is left untouched.
func (r *RoleRepo) Ensure(ctx context.Context, id, name string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (id, name) VALUES (?,?) ON DUPLICATE KEY UPDATE name=name",
		id, name)
	return err
}

// List returns all role names, sorted.
func (r *RoleRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT name FROM roles ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNames(rows)
}

// FindByName returns the role with the given name.
func (r *RoleRepo) FindByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE name=? LIMIT 1", name).Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrNotFound
	}
	return role, err
}

// RolesForUser returns the names of the user's roles, sorted by name.
func (r *RoleRepo) RolesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.name FROM roles r
		 INNER JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.name ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNames(rows)
}

// Assign links a user to a role.  Re-assigning an already-held role is a
// no-op, not an error.
func (r *RoleRepo) Assign(ctx context.Context, userID, roleID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role_id) VALUES (?,?)",
		userID, roleID)
	return err
}

func scanNames(rows *sql.Rows) ([]string, error) {
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
