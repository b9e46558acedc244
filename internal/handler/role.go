package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edgarhovh/auth-service/internal/service"
)

// RoleHandler exposes the role catalog and assignment endpoints.  Routes
// are guarded by the users.manage permission in the router.
type RoleHandler struct {
	Roles *service.RoleService
}

func NewRoleHandler(roles *service.RoleService) *RoleHandler {
	return &RoleHandler{Roles: roles}
}

type assignRoleReq struct {
	Role string `json:"role"`
}

// List returns the role catalog.
func (h *RoleHandler) List(c echo.Context) error {
	names, err := h.Roles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"roles": names})
}

// UserRoles returns a user's roles and derived permissions.
func (h *RoleHandler) UserRoles(c echo.Context) error {
	userID := c.Param("id")
	roles, perms, err := h.Roles.RolesForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":     userID,
		"roles":       roles,
		"permissions": perms,
	})
}

// Assign grants a role to a user.
func (h *RoleHandler) Assign(c echo.Context) error {
	userID := c.Param("id")
	var req assignRoleReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		return badRequest("role required")
	}

	if err := h.Roles.Assign(c.Request().Context(), userID, req.Role, clientContext(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"assigned": true})
}
