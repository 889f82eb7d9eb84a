package middleware

import (
	stderrors "errors"

	"finance-assistant/internal/errors"
	"finance-assistant/internal/handlers"
	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"
	"finance-assistant/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set for authenticated requests.
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	TokenJTIKey  = "token_jti"
)

type authFailure struct {
	code   errors.ErrorCode
	detail string
}

// RequireAuth admits requests bearing a valid, unrevoked access token and
// exposes the caller's id, email and token id on the echo context.
func RequireAuth(tokenService services.TokenServiceInterface, revoked repositories.BlacklistedTokenRepositoryInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, userID, failure := authenticate(c.Request().Header.Get(echo.HeaderAuthorization), tokenService, revoked)
			if failure != nil {
				var opts []errors.ErrorOption
				if failure.detail != "" {
					opts = append(opts, errors.WithDetails(failure.detail))
				}
				return handlers.SendError(c, failure.code, opts...)
			}

			c.Set(UserIDKey, userID)
			c.Set(UserEmailKey, claims.Email)
			c.Set(TokenJTIKey, claims.ID)
			return next(c)
		}
	}
}

func authenticate(header string, tokenService services.TokenServiceInterface, revoked repositories.BlacklistedTokenRepositoryInterface) (*models.CustomClaims, uuid.UUID, *authFailure) {
	if header == "" {
		return nil, uuid.Nil, &authFailure{code: errors.AuthMissingToken}
	}

	raw, err := tokenService.ExtractTokenFromHeader(header)
	if err != nil {
		return nil, uuid.Nil, &authFailure{code: errors.AuthInvalidTokenFormat}
	}

	claims, err := tokenService.ValidateAccessToken(raw)
	switch {
	case stderrors.Is(err, services.ErrExpiredToken):
		return nil, uuid.Nil, &authFailure{code: errors.AuthExpiredToken}
	case err != nil:
		return nil, uuid.Nil, &authFailure{code: errors.AuthInvalidTokenFormat}
	}

	// A failed lookup is treated as "not revoked".
	if entry, err := revoked.GetByJTI(claims.ID); err == nil && entry != nil {
		return nil, uuid.Nil, &authFailure{code: errors.AuthInvalidTokenFormat, detail: "Token has been revoked"}
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return nil, uuid.Nil, &authFailure{code: errors.AuthInvalidTokenFormat, detail: "Invalid user ID in token"}
	}
	return claims, userID, nil
}
