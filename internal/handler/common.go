// Package handler implements the HTTP boundary.  Handlers bind and
// validate input, call one service operation and serialize the result;
// errors flow out as tagged apperr values and are written by ErrorHandler
// in exactly one place.
package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/service"
)

// ErrorHandler is the echo HTTPErrorHandler translating tagged errors into
// the JSON error envelope.  Server-kind causes are logged here and never
// serialized.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Echo's own errors (404, 405, bad binds bubbled up) keep their status.
	if he, ok := err.(*echo.HTTPError); ok {
		_ = c.JSON(he.Code, echo.Map{"error": echo.Map{
			"code":    "HTTP_ERROR",
			"message": http.StatusText(he.Code),
		}})
		return
	}

	e := apperr.From(err)
	if e.Kind == apperr.KindServer {
		log.Printf("http: %s %s failed: %v", c.Request().Method, c.Path(), err)
	}

	body := echo.Map{"code": e.Code, "message": e.Message}
	if e.RetryAfter > 0 {
		body["retry_after"] = e.RetryAfter
	}
	_ = c.JSON(apperr.HTTPStatus(e.Kind), echo.Map{"error": body})
}

func badRequest(message string) error {
	return apperr.New(apperr.KindValidation, "VALIDATION", message)
}

// clientContext extracts the caller's IP and user agent for token records
// and audit entries.
func clientContext(c echo.Context) service.ClientContext {
	return service.ClientContext{
		IP: c.RealIP(),
		UA: c.Request().UserAgent(),
	}
}
