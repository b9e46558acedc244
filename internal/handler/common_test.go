package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgarhovh/auth-service/internal/apperr"
)

func serve(err error) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil), rec)
	ErrorHandler(err, c)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestErrorHandlerTaggedError(t *testing.T) {
	rec := serve(apperr.New(apperr.KindConflict, "EMAIL_IN_USE", "email already registered"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	e := envelope(t, rec)
	assert.Equal(t, "EMAIL_IN_USE", e["code"])
	assert.Equal(t, "email already registered", e["message"])
}

func TestErrorHandlerRateLimited(t *testing.T) {
	rec := serve(apperr.RateLimited(30))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	e := envelope(t, rec)
	assert.Equal(t, "RATE_LIMITED", e["code"])
	assert.Equal(t, float64(30), e["retry_after"])
}

func TestErrorHandlerHidesServerDetail(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:3306: connection refused")
	rec := serve(apperr.Wrap(apperr.KindServer, "TOKEN_PERSIST_FAILED", "could not issue session", cause))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestErrorHandlerUnclassifiedError(t *testing.T) {
	rec := serve(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := envelope(t, rec)
	assert.Equal(t, "SERVER_ERROR", e["code"])
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestErrorHandlerEchoHTTPError(t *testing.T) {
	rec := serve(echo.NewHTTPError(http.StatusNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	e := envelope(t, rec)
	assert.Equal(t, "HTTP_ERROR", e["code"])
}
