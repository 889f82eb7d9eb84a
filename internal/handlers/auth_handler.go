package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"finance-assistant/internal/dto"
	"finance-assistant/internal/errors"
	"finance-assistant/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandler serves /api/auth. Every route here is public except logout.
type AuthHandler struct {
	authService services.AuthServiceInterface
}

func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
// @Summary Register a new user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} SuccessResponse{data=dto.AuthResponse} "User created and signed in"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or USER_006"
// @Failure 409 {object} errors.ErrorResponse "USER_002 - Email already registered"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindRequest(c, &req, fromBody); err != nil {
		return SendRequestError(c, err)
	}

	response, err := h.authService.Register(&req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Data: response, Message: "User registered successfully"})
}

// Login handles user authentication
// @Summary Login user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} SuccessResponse{data=dto.AuthResponse} "Login successful"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Invalid credentials"
// @Failure 403 {object} errors.ErrorResponse "AUTH_006 or USER_003"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindRequest(c, &req, fromBody); err != nil {
		return SendRequestError(c, err)
	}

	response, err := h.authService.Login(&req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: response, Message: "Login successful"})
}

// RefreshToken rotates a refresh token into a new token pair
// @Summary Refresh access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} SuccessResponse{data=dto.AuthResponse} "Token refreshed"
// @Failure 401 {object} errors.ErrorResponse "AUTH_007 - Invalid refresh token"
// @Router /api/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req dto.RefreshTokenRequest
	if err := bindRequest(c, &req, fromBody); err != nil {
		return SendRequestError(c, err)
	}

	response, err := h.authService.RefreshTokens(req.RefreshToken, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: response, Message: "Token refreshed successfully"})
}

// Logout handles user logout
// @Summary Logout user
// @Description Blacklists the presented access token and revokes the given refresh token, or all of them.
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} SuccessResponse{message=string} "Logout successful"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 or AUTH_004"
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return SendError(c, errors.AuthMissingToken)
	}

	scheme, accessToken, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.Contains(accessToken, " ") {
		return SendError(c, errors.AuthInvalidTokenFormat)
	}

	// the body is optional
	var req dto.LogoutRequest
	_ = c.Bind(&req)

	// logout always succeeds from the client's point of view
	if err := h.authService.Logout(accessToken, req.RefreshToken, getClientIP(c), c.Request().UserAgent()); err != nil {
		slog.Warn("logout failed", "error", err, "trace_id", getTraceID(c))
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Logout successful"})
}

func (h *AuthHandler) handleServiceError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, services.ErrUserAlreadyExists):
		return SendError(c, errors.UserAlreadyExists)
	case stderrors.Is(err, services.ErrInvalidCredentials):
		return SendError(c, errors.AuthInvalidCredentials)
	case stderrors.Is(err, services.ErrAccountLocked):
		return SendError(c, errors.AuthAccountLocked)
	case stderrors.Is(err, services.ErrAccountInactive):
		return SendError(c, errors.UserInactive)
	case stderrors.Is(err, services.ErrInvalidRefreshToken):
		return SendError(c, errors.AuthInvalidRefreshToken)
	case stderrors.Is(err, services.ErrInvalidProfilePicture):
		return SendError(c, errors.UserInvalidProfilePicture)
	case isPasswordPolicyError(err):
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(passwordPolicyDetail(err)))
	default:
		return SendSystemError(c, err)
	}
}
