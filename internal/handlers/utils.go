package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"finance-assistant/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var ErrUnauthorized = errors.New("unauthorized")

// getUserIDFromContext reads the id the auth middleware stored for the request.
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

// getIntParam falls back to defaultValue for missing or malformed values.
func getIntParam(c echo.Context, name string, defaultValue int) int {
	value, err := getStrictIntParam(c, name, defaultValue)
	if err != nil {
		return defaultValue
	}
	return value
}

// getStrictIntParam is getIntParam for parameters where a malformed value must be rejected.
func getStrictIntParam(c echo.Context, name string, defaultValue int) (int, error) {
	param := strings.TrimSpace(c.QueryParam(name))
	if param == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}

	return value, nil
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func getClientIP(c echo.Context) string {
	return c.RealIP()
}

var passwordPolicyErrors = []error{
	services.ErrPasswordEmpty,
	services.ErrPasswordTooShort,
	services.ErrPasswordTooLong,
	services.ErrPasswordNoUppercase,
	services.ErrPasswordNoLowercase,
	services.ErrPasswordNoNumber,
	services.ErrPasswordNoSpecial,
}

func isPasswordPolicyError(err error) bool {
	for _, policyErr := range passwordPolicyErrors {
		if errors.Is(err, policyErr) {
			return true
		}
	}
	return false
}

// passwordPolicyDetail strips wrapping context so only the policy rule reaches the client
func passwordPolicyDetail(err error) string {
	for _, policyErr := range passwordPolicyErrors {
		if errors.Is(err, policyErr) {
			return policyErr.Error()
		}
	}
	return err.Error()
}
