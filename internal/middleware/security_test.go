package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders())
	e.GET("/api/transactions/balance", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"currentBalance": "0.00"})
	})

	want := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"X-XSS-Protection":          "1; mode=block",
		"Content-Security-Policy":   "default-src 'self'",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
		"Permissions-Policy":        "geolocation=(), microphone=(), camera=()",
		"Cache-Control":             "no-store, no-cache, must-revalidate, private",
		"Pragma":                    "no-cache",
		"Expires":                   "0",
	}

	for _, target := range []string{"/api/transactions/balance", "/api/unknown"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		for name, value := range want {
			assert.Equal(t, value, rec.Header().Get(name), "%s on %s", name, target)
		}
	}
}

func TestSecurityHeaders_PassesHandlerError(t *testing.T) {
	failure := errors.New("ledger unavailable")
	called := false

	handler := SecurityHeaders()(func(c echo.Context) error {
		called = true
		return failure
	})

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := handler(c)
	require.ErrorIs(t, err, failure)
	assert.True(t, called)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
