package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edgarhovh/auth-service/internal/service"
)

// RecoveryHandler exposes the forgotten-password endpoints, both the OTP
// exchange and the link-token variant.
type RecoveryHandler struct {
	Recovery *service.RecoveryService
}

func NewRecoveryHandler(recovery *service.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{Recovery: recovery}
}

type recoveryRequestReq struct {
	Identifier string `json:"identifier"` // email or phone
}
type recoveryConfirmReq struct {
	Identifier  string `json:"identifier"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}
type resetLinkReq struct {
	Email string `json:"email"`
}
type resetConfirmReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Request starts recovery.  The response shape is identical whether the
// account exists or not.
func (h *RecoveryHandler) Request(c echo.Context) error {
	var req recoveryRequestReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if strings.TrimSpace(req.Identifier) == "" {
		return badRequest("identifier required")
	}

	res, err := h.Recovery.Request(c.Request().Context(), req.Identifier)
	if err != nil {
		return err
	}
	body := echo.Map{"delivered": res.Delivered, "channel": res.Channel}
	if res.Delivered {
		body["expires_at"] = res.ExpiresAt
	}
	return c.JSON(http.StatusOK, body)
}

// Confirm finishes recovery with the code and the new password.
func (h *RecoveryHandler) Confirm(c echo.Context) error {
	var req recoveryConfirmReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Code == "" {
		return badRequest("identifier and code required")
	}
	if len(req.NewPassword) < 8 {
		return badRequest("password must be at least 8 characters")
	}

	res, err := h.Recovery.Confirm(c.Request().Context(), req.Identifier, req.Code, req.NewPassword, clientContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":     res.UserID,
		"roles":       res.Roles,
		"permissions": res.Permissions,
	})
}

// RequestLink mails a single-use reset token instead of a code.
func (h *RecoveryHandler) RequestLink(c echo.Context) error {
	var req resetLinkReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if !strings.Contains(req.Email, "@") {
		return badRequest("valid email required")
	}

	res, err := h.Recovery.IssueResetToken(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	body := echo.Map{"delivered": res.Delivered}
	if res.Delivered {
		body["expires_at"] = res.ExpiresAt
	}
	return c.JSON(http.StatusOK, body)
}

// ConfirmLink finishes a link-token recovery.
func (h *RecoveryHandler) ConfirmLink(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if req.Token == "" {
		return badRequest("token required")
	}
	if len(req.NewPassword) < 8 {
		return badRequest("password must be at least 8 characters")
	}

	res, err := h.Recovery.ConfirmWithToken(c.Request().Context(), req.Token, req.NewPassword, clientContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":     res.UserID,
		"roles":       res.Roles,
		"permissions": res.Permissions,
	})
}
