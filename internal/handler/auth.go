package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/edgarhovh/auth-service/internal/middleware"
	"github.com/edgarhovh/auth-service/internal/service"
)

// AuthHandler bundles dependencies for the register/login/refresh/logout
// endpoints.
type AuthHandler struct {
	Auth   *service.AuthService
	Tokens *service.TokenService
}

func NewAuthHandler(auth *service.AuthService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{Auth: auth, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
type loginReq struct {
	Identifier string `json:"identifier"` // email or phone
	Password   string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResp struct {
	UserID           string    `json:"user_id"`
	SessionID        string    `json:"session_id"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	Roles            []string  `json:"roles"`
	Permissions      []string  `json:"permissions"`
}

func toSessionResp(s service.Session) sessionResp {
	return sessionResp{
		UserID:           s.UserID,
		SessionID:        s.SessionID,
		AccessToken:      s.AccessToken,
		RefreshToken:     s.RefreshToken,
		AccessExpiresAt:  s.AccessExpiresAt,
		RefreshExpiresAt: s.RefreshExpiresAt,
		Roles:            s.Roles,
		Permissions:      s.Permissions,
	}
}

// Register creates an account and kicks off verification challenges.  No
// session is issued; the client logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return badRequest("valid email required")
	}
	if len(req.Password) < 8 {
		return badRequest("password must be at least 8 characters")
	}

	res, err := h.Auth.Register(c.Request().Context(), service.RegisterRequest{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}, clientContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"user_id":        res.UserID,
		"email":          res.Email,
		"phone":          res.Phone,
		"email_otp_sent": res.EmailOtpSent,
		"phone_otp_sent": res.PhoneOtpSent,
	})
}

// Login authenticates with email or phone plus password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		return badRequest("identifier and password required")
	}

	session, err := h.Auth.Login(c.Request().Context(), req.Identifier, req.Password, clientContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResp(session))
}

// Refresh rotates the presented refresh token for a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if req.RefreshToken == "" {
		return badRequest("refresh_token required")
	}

	session, err := h.Tokens.RotateRefreshToken(c.Request().Context(), req.RefreshToken, clientContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResp(session))
}

// Logout revokes the presented refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if req.RefreshToken == "" {
		return badRequest("refresh_token required")
	}

	if err := h.Auth.Logout(c.Request().Context(), req.RefreshToken, clientContext(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"revoked": true})
}

// LogoutAll revokes every session the authenticated user holds.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	userID := middleware.UserID(c)
	if err := h.Auth.LogoutEverywhere(c.Request().Context(), userID, clientContext(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"revoked": true})
}

// LogoutSession revokes one of the caller's sessions by refresh token id.
func (h *AuthHandler) LogoutSession(c echo.Context) error {
	userID := middleware.UserID(c)
	if err := h.Auth.LogoutSession(c.Request().Context(), userID, c.Param("id"), clientContext(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"revoked": true})
}

// Me echoes the authenticated identity from the access token claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":     middleware.UserID(c),
		"roles":       middleware.Roles(c),
		"permissions": middleware.Permissions(c),
	})
}
