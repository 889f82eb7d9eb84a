package handlers

import (
	stderrors "errors"
	"net/http"

	"finance-assistant/internal/dto"
	"finance-assistant/internal/errors"
	"finance-assistant/internal/services"

	"github.com/labstack/echo/v4"
)

const maxActivityLimit = 100

// UserHandler serves the authenticated user's own profile
type UserHandler struct {
	userService services.UserServiceInterface
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile returns the profile of the authenticated user
// @Summary Get profile
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.UserProfileResponse}
// @Failure 404 {object} errors.ErrorResponse "USER_001 - User not found"
// @Router /api/users/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: dto.NewUserProfileResponse(user),
	})
}

// UpdateProfile applies a partial profile update
// @Summary Update profile
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} SuccessResponse{data=dto.UserProfileResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or USER_006"
// @Router /api/users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.UpdateProfileRequest
	if err := bindRequest(c, &req, fromBody); err != nil {
		return SendRequestError(c, err)
	}

	user, err := h.userService.UpdateProfile(userID, &req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    dto.NewUserProfileResponse(user),
		Message: "Profile updated successfully",
	})
}

// ChangePassword replaces the password after verifying the current one
// @Summary Change password
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} SuccessResponse{message=string}
// @Failure 400 {object} errors.ErrorResponse "USER_005 - Current password is incorrect"
// @Router /api/users/change-password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.ChangePasswordRequest
	if err := bindRequest(c, &req, fromBody); err != nil {
		return SendRequestError(c, err)
	}

	if err := h.userService.ChangePassword(userID, &req, getClientIP(c), c.Request().UserAgent()); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Password changed successfully",
	})
}

// DeleteProfile removes the user together with their transactions and categories
// @Summary Delete account
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{message=string}
// @Router /api/users/profile [delete]
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	if err := h.userService.DeleteAccount(userID, getClientIP(c), c.Request().UserAgent()); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Account deleted successfully",
	})
}

// GetActivity returns a page of the user's audit trail, newest first
// @Summary Account activity
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Page size (max 100)" default(20)
// @Success 200 {object} SuccessResponse{data=[]dto.AuditLogResponse,meta=dto.PaginationInfo}
// @Router /api/users/activity [get]
func (h *UserHandler) GetActivity(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	offset := getIntParam(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := getIntParam(c, "limit", services.DefaultActivityLimit)
	if limit <= 0 || limit > maxActivityLimit {
		limit = services.DefaultActivityLimit
	}

	logs, total, err := h.userService.GetActivity(userID, offset, limit)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	activity := make([]dto.AuditLogResponse, 0, len(logs))
	for _, log := range logs {
		activity = append(activity, dto.AuditLogResponse{
			Action:    log.Action,
			Resource:  log.Resource,
			IPAddress: log.IPAddress,
			UserAgent: log.UserAgent,
			CreatedAt: log.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: activity,
		Meta: dto.PaginationInfo{
			Offset: offset,
			Limit:  limit,
			Count:  len(activity),
			Total:  total,
		},
	})
}

func (h *UserHandler) handleServiceError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, services.ErrUserNotFound):
		return SendError(c, errors.UserNotFound)
	case stderrors.Is(err, services.ErrInvalidUserID):
		return SendError(c, errors.UserInvalidID)
	case stderrors.Is(err, services.ErrIncorrectPassword):
		return SendError(c, errors.UserIncorrectPassword)
	case stderrors.Is(err, services.ErrInvalidProfilePicture):
		return SendError(c, errors.UserInvalidProfilePicture)
	case stderrors.Is(err, services.ErrInvalidProfile):
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	case isPasswordPolicyError(err):
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(passwordPolicyDetail(err)))
	default:
		return SendSystemError(c, err)
	}
}
