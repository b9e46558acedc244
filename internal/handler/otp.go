package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edgarhovh/auth-service/internal/model"
	"github.com/edgarhovh/auth-service/internal/service"
)

// OtpHandler exposes the code send/verify endpoints.
type OtpHandler struct {
	Otp *service.OtpService
}

func NewOtpHandler(otp *service.OtpService) *OtpHandler {
	return &OtpHandler{Otp: otp}
}

type otpSendReq struct {
	Destination string `json:"destination"`
	Purpose     string `json:"purpose"`
	Channel     string `json:"channel"`
}
type otpVerifyReq struct {
	Destination string `json:"destination"`
	Purpose     string `json:"purpose"`
	Code        string `json:"code"`
}

var validPurposes = map[string]bool{
	model.PurposeVerifyEmail: true,
	model.PurposeVerifyPhone: true,
	model.PurposeLogin:       true,
	model.PurposeRecovery:    true,
}

// Send issues a one-time code to the destination.
func (h *OtpHandler) Send(c echo.Context) error {
	var req otpSendReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" {
		return badRequest("destination required")
	}
	if !validPurposes[req.Purpose] {
		return badRequest("unknown purpose")
	}
	if req.Channel != model.ChannelEmail && req.Channel != model.ChannelSMS {
		return badRequest("channel must be email or sms")
	}
	if req.Channel == model.ChannelEmail {
		req.Destination = strings.ToLower(req.Destination)
	}

	expiresAt, err := h.Otp.Send(c.Request().Context(), service.SendOtpRequest{
		Destination: req.Destination,
		Purpose:     req.Purpose,
		Channel:     req.Channel,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"sent": true, "expires_at": expiresAt})
}

// Verify checks and consumes a one-time code.
func (h *OtpHandler) Verify(c echo.Context) error {
	var req otpVerifyReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" || req.Code == "" {
		return badRequest("destination and code required")
	}
	if !validPurposes[req.Purpose] {
		return badRequest("unknown purpose")
	}
	if strings.Contains(req.Destination, "@") {
		req.Destination = strings.ToLower(req.Destination)
	}

	if err := h.Otp.Verify(c.Request().Context(), req.Destination, req.Purpose, req.Code); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": true})
}
