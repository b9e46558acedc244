package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/model"
	"github.com/edgarhovh/auth-service/internal/permission"
	"github.com/edgarhovh/auth-service/internal/repository"
)

// RoleService manages the role catalog and user assignments.  The catalog
// is closed: every role the service knows about comes from the permission
// table and is seeded at startup.
type RoleService struct {
	roles    RoleStore
	users    UserStore
	activity *ActivityRecorder
}

func NewRoleService(roles RoleStore, users UserStore, activity *ActivityRecorder) *RoleService {
	return &RoleService{roles: roles, users: users, activity: activity}
}

// EnsureBaseRoles upserts the known role set.  Called once at startup so a
// fresh database is usable without manual seeding; re-running is harmless.
func (s *RoleService) EnsureBaseRoles(ctx context.Context) error {
	for _, name := range permission.Roles() {
		if err := s.roles.Ensure(ctx, uuid.NewString(), name); err != nil {
			return apperr.Wrap(apperr.KindServer, "ROLE_SEED_FAILED", "could not seed roles", err)
		}
	}
	return nil
}

// List returns every role name in the catalog.
func (s *RoleService) List(ctx context.Context) ([]string, error) {
	names, err := s.roles.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindServer, "ROLE_LIST_FAILED", "could not list roles", err)
	}
	return names, nil
}

// RolesForUser returns the role names assigned to the user, plus the
// permissions they derive to.
func (s *RoleService) RolesForUser(ctx context.Context, userID string) ([]string, []string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "user not found")
		}
		return nil, nil, apperr.Wrap(apperr.KindServer, "USER_LOOKUP_FAILED", "could not load user", err)
	}
	names, err := s.roles.RolesForUser(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindServer, "ROLE_LOOKUP_FAILED", "could not load roles", err)
	}
	return names, permission.FromRoles(names), nil
}

// Assign grants a role to a user by name.  Granting an already-held role
// is a no-op success.  Existing sessions keep their old claims until they
// rotate; the next refresh picks the grant up.
func (s *RoleService) Assign(ctx context.Context, userID, roleName string, client ClientContext) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "user not found")
		}
		return apperr.Wrap(apperr.KindServer, "USER_LOOKUP_FAILED", "could not load user", err)
	}
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "ROLE_NOT_FOUND", "role not found")
		}
		return apperr.Wrap(apperr.KindServer, "ROLE_LOOKUP_FAILED", "could not load role", err)
	}
	if err := s.roles.Assign(ctx, userID, role.ID); err != nil {
		return apperr.Wrap(apperr.KindServer, "ROLE_ASSIGN_FAILED", "could not assign role", err)
	}
	if err := s.activity.Record(ctx, userID, model.ActionRoleAssigned, client); err != nil {
		log.Printf("role: audit write failed for assign %s->%s: %v", roleName, userID, err)
	}
	return nil
}
