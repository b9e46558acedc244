// Package middleware holds the echo middleware for authentication,
// permission guards and rate limiting.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/service"
)

// Context keys set by JWTAuth for downstream middleware and handlers.
const (
	CtxUserID      = "user_id"
	CtxRoles       = "roles"
	CtxPermissions = "permissions"
	CtxSessionID   = "session_id"
	CtxTokenID     = "token_id"
)

// JWTAuth validates the Bearer access token on every request it wraps and
// stores the decoded identity in the echo context.  Verification is
// stateless; only refresh tokens carry revocation state.
func JWTAuth(tokens *service.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := tokens.Verify(raw)
			if err != nil {
				return err
			}

			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxRoles, claims.Roles)
			c.Set(CtxPermissions, claims.Permissions)
			c.Set(CtxSessionID, claims.SessionID)
			c.Set(CtxTokenID, claims.ID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id from the context, or "" when
// the request did not pass through JWTAuth.
func UserID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok {
		return s
	}
	return ""
}

// Permissions returns the permission claims set by JWTAuth.
func Permissions(c echo.Context) []string {
	if p, ok := c.Get(CtxPermissions).([]string); ok {
		return p
	}
	return nil
}

// Roles returns the role claims set by JWTAuth.
func Roles(c echo.Context) []string {
	if r, ok := c.Get(CtxRoles).([]string); ok {
		return r
	}
	return nil
}
