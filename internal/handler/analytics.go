package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/edgarhovh/auth-service/internal/middleware"
	"github.com/edgarhovh/auth-service/internal/service"
)

// AnalyticsHandler serves the reporting endpoints.  Routes are guarded by
// the analytics.read permission in the router.
type AnalyticsHandler struct {
	Analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: analytics}
}

func windowDays(c echo.Context) int {
	if raw := c.QueryParam("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return 0 // service applies the default
}

// MyActivity returns the caller's own recent audit entries.  No special
// permission: users may always see their own trail.
func (h *AnalyticsHandler) MyActivity(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	out, err := h.Analytics.RecentActivity(c.Request().Context(), middleware.UserID(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"activity": out})
}

// Summary returns the aggregate counters over the trailing window.
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	out, err := h.Analytics.Summary(c.Request().Context(), windowDays(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Timeline returns per-day event counts over the trailing window.
func (h *AnalyticsHandler) Timeline(c echo.Context) error {
	out, err := h.Analytics.Timeline(c.Request().Context(), windowDays(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"timeline": out})
}
