package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/edgarhovh/auth-service/internal/apperr"
)

// RequirePermission guards a route behind one permission claim.  It must
// run after JWTAuth.  Authorization checks the token's own permission
// list; the role table is not consulted per request, so a grant made
// after issuance only takes effect once the session rotates.
func RequirePermission(perm string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, p := range Permissions(c) {
				if p == perm {
					return next(c)
				}
			}
			return apperr.New(apperr.KindForbidden, "FORBIDDEN", "insufficient permissions")
		}
	}
}
