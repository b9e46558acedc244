// Package router wires the handlers, auth middleware and per-route rate
// limits onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/edgarhovh/auth-service/internal/config"
	"github.com/edgarhovh/auth-service/internal/handler"
	"github.com/edgarhovh/auth-service/internal/middleware"
	"github.com/edgarhovh/auth-service/internal/permission"
	"github.com/edgarhovh/auth-service/internal/service"
)

// Handlers collects the handler set the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Otp       *handler.OtpHandler
	Recovery  *handler.RecoveryHandler
	Roles     *handler.RoleHandler
	Status    *handler.StatusHandler
	Analytics *handler.AnalyticsHandler
}

// Register mounts every route.  Abuse-prone endpoints get their own
// sliding-window rule keyed by client IP; a nil redis client disables
// limiting entirely (fail-open).
func Register(e *echo.Echo, h Handlers, tokens *service.TokenService, rl config.RateLimitConfig, rdb *redis.Client) {
	e.HTTPErrorHandler = handler.ErrorHandler

	if !rl.Enabled {
		rdb = nil
	}

	e.GET("/healthz", h.Status.Health)

	// Unauthenticated session endpoints.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register, middleware.RateLimit(rl.Register, rdb))
	auth.POST("/login", h.Auth.Login, middleware.RateLimit(rl.Login, rdb))
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// One-time codes.
	otp := e.Group("/v1/otp")
	otp.POST("/send", h.Otp.Send, middleware.RateLimit(rl.OTPSend, rdb))
	otp.POST("/verify", h.Otp.Verify)

	// Password recovery, code and link variants.
	rec := e.Group("/v1/recovery")
	rec.POST("/request", h.Recovery.Request, middleware.RateLimit(rl.Recovery, rdb))
	rec.POST("/confirm", h.Recovery.Confirm)
	rec.POST("/link", h.Recovery.RequestLink, middleware.RateLimit(rl.Recovery, rdb))
	rec.POST("/link/confirm", h.Recovery.ConfirmLink)

	// Everything below requires a valid access token.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(tokens))
	v1.GET("/me", h.Auth.Me)
	v1.GET("/me/activity", h.Analytics.MyActivity)
	v1.DELETE("/sessions", h.Auth.LogoutAll)
	v1.DELETE("/sessions/:id", h.Auth.LogoutSession)

	admin := v1.Group("", middleware.RequirePermission(permission.UsersManage))
	admin.GET("/roles", h.Roles.List)
	admin.GET("/users/:id/roles", h.Roles.UserRoles)
	admin.POST("/users/:id/roles", h.Roles.Assign)

	v1.GET("/status", h.Status.Report, middleware.RequirePermission(permission.StatusRead))

	analytics := v1.Group("/analytics", middleware.RequirePermission(permission.AnalyticsRead))
	analytics.GET("/summary", h.Analytics.Summary)
	analytics.GET("/timeline", h.Analytics.Timeline)
}
