package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edgarhovh/auth-service/internal/service"
)

// StatusHandler serves the liveness probe and the dependency summary.
type StatusHandler struct {
	Status *service.StatusService
}

func NewStatusHandler(status *service.StatusService) *StatusHandler {
	return &StatusHandler{Status: status}
}

// Health is the unauthenticated liveness probe.
func (h *StatusHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Report returns the dependency probe summary.  Requires status.read.
func (h *StatusHandler) Report(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Status.Report(c.Request().Context()))
}
