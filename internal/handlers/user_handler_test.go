package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"finance-assistant/internal/dto"
	"finance-assistant/internal/models"
	"finance-assistant/internal/services"
	"finance-assistant/internal/services/service_mocks"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestUserHandler(t *testing.T) {
	suite.Run(t, new(UserHandlerSuite))
}

type UserHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	userService *service_mocks.MockUserServiceInterface
	handler     *UserHandler
	e           *echo.Echo
	userID      uuid.UUID
}

func (s *UserHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userService = service_mocks.NewMockUserServiceInterface(s.ctrl)
	s.handler = NewUserHandler(s.userService)
	s.e = newTestEcho()
	s.userID = uuid.New()
}

func (s *UserHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *UserHandlerSuite) user() *models.User {
	return &models.User{
		ID:        s.userID,
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Status:    models.UserStatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (s *UserHandlerSuite) TestGetProfile() {
	user := s.user()
	s.userService.EXPECT().GetProfile(s.userID).Return(user, nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/api/users/profile", nil)
	authenticate(c, s.userID)

	s.NoError(s.handler.GetProfile(c))
	s.Equal(http.StatusOK, rec.Code)

	var response struct {
		Data dto.UserProfileResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal(user.Email, response.Data.Email)
	s.Equal(s.userID.String(), response.Data.ID)
	s.NotContains(rec.Body.String(), "password")
}

func (s *UserHandlerSuite) TestGetProfile_Unauthenticated() {
	c, rec := newJSONContext(s.e, http.MethodGet, "/api/users/profile", nil)

	s.NoError(s.handler.GetProfile(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("AUTH_002", decodeErrorCode(rec))
}

func (s *UserHandlerSuite) TestGetProfile_NotFound() {
	s.userService.EXPECT().GetProfile(s.userID).Return(nil, services.ErrUserNotFound)

	c, rec := newJSONContext(s.e, http.MethodGet, "/api/users/profile", nil)
	authenticate(c, s.userID)

	s.NoError(s.handler.GetProfile(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("USER_001", decodeErrorCode(rec))
}

func (s *UserHandlerSuite) TestUpdateProfile() {
	user := s.user()
	budget := decimal.RequireFromString("2500.00")
	user.MonthlyBudget = &budget
	user.RiskTolerance = models.RiskToleranceHigh

	s.userService.EXPECT().
		UpdateProfile(s.userID, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ uuid.UUID, req *dto.UpdateProfileRequest, _, _ string) (*models.User, error) {
			s.Require().NotNil(req.MonthlyBudget)
			s.True(budget.Equal(*req.MonthlyBudget))
			s.Require().NotNil(req.RiskTolerance)
			s.Equal("HIGH", *req.RiskTolerance)
			s.Nil(req.FirstName)
			return user, nil
		})

	c, rec := newJSONContext(s.e, http.MethodPut, "/api/users/profile", map[string]interface{}{
		"monthlyBudget": "2500.00",
		"riskTolerance": "HIGH",
	})
	authenticate(c, s.userID)

	s.NoError(s.handler.UpdateProfile(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"riskTolerance":"HIGH"`)
}

func (s *UserHandlerSuite) TestUpdateProfile_ValidationAndServiceErrors() {
	s.Run("invalid risk tolerance", func() {
		c, rec := newJSONContext(s.e, http.MethodPut, "/api/users/profile", map[string]interface{}{
			"riskTolerance": "RECKLESS",
		})
		authenticate(c, s.userID)

		s.NoError(s.handler.UpdateProfile(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "riskTolerance")
	})

	s.Run("oversized picture", func() {
		s.userService.EXPECT().
			UpdateProfile(s.userID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, services.ErrInvalidProfilePicture)

		c, rec := newJSONContext(s.e, http.MethodPut, "/api/users/profile", map[string]interface{}{
			"profilePicture": "bm90IGFuIGltYWdl",
		})
		authenticate(c, s.userID)

		s.NoError(s.handler.UpdateProfile(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("USER_006", decodeErrorCode(rec))
	})

	s.Run("negative budget", func() {
		s.userService.EXPECT().
			UpdateProfile(s.userID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("%w: monthly budget cannot be negative", services.ErrInvalidProfile))

		c, rec := newJSONContext(s.e, http.MethodPut, "/api/users/profile", map[string]interface{}{
			"monthlyBudget": "-1",
		})
		authenticate(c, s.userID)

		s.NoError(s.handler.UpdateProfile(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "monthly budget cannot be negative")
	})
}

func (s *UserHandlerSuite) TestChangePassword() {
	body := map[string]string{
		"currentPassword": "OldPassword1!",
		"newPassword":     "NewPassword1!",
	}

	s.Run("success", func() {
		s.userService.EXPECT().
			ChangePassword(s.userID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		c, rec := newJSONContext(s.e, http.MethodPut, "/api/users/change-password", body)
		authenticate(c, s.userID)

		s.NoError(s.handler.ChangePassword(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("wrong current password", func() {
		s.userService.EXPECT().
			ChangePassword(s.userID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(services.ErrIncorrectPassword)

		c, rec := newJSONContext(s.e, http.MethodPut, "/api/users/change-password", body)
		authenticate(c, s.userID)

		s.NoError(s.handler.ChangePassword(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("USER_005", decodeErrorCode(rec))
	})

	s.Run("weak new password", func() {
		s.userService.EXPECT().
			ChangePassword(s.userID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("failed to hash password: %w", services.ErrPasswordNoNumber))

		c, rec := newJSONContext(s.e, http.MethodPut, "/api/users/change-password", body)
		authenticate(c, s.userID)

		s.NoError(s.handler.ChangePassword(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), services.ErrPasswordNoNumber.Error())
	})
}

func (s *UserHandlerSuite) TestDeleteProfile() {
	s.userService.EXPECT().DeleteAccount(s.userID, gomock.Any(), gomock.Any()).Return(nil)

	c, rec := newJSONContext(s.e, http.MethodDelete, "/api/users/profile", nil)
	authenticate(c, s.userID)

	s.NoError(s.handler.DeleteProfile(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Account deleted successfully")
}

func (s *UserHandlerSuite) TestGetActivity() {
	logs := []*models.AuditLog{
		{Action: models.AuditActionLogin, Resource: models.AuditResourceAuth, IPAddress: gofakeit.IPv4Address(), CreatedAt: time.Now()},
		{Action: models.AuditActionLogin, Resource: models.AuditResourceAuth, CreatedAt: time.Now().Add(-time.Hour)},
	}
	s.userService.EXPECT().GetActivity(s.userID, 0, 10).Return(logs, int64(7), nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/api/users/activity?limit=10", nil)
	authenticate(c, s.userID)

	s.NoError(s.handler.GetActivity(c))
	s.Equal(http.StatusOK, rec.Code)

	var response struct {
		Data []dto.AuditLogResponse `json:"data"`
		Meta dto.PaginationInfo     `json:"meta"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Len(response.Data, 2)
	s.Equal(int64(7), response.Meta.Total)
	s.Equal(10, response.Meta.Limit)
	s.Equal(2, response.Meta.Count)
}

func (s *UserHandlerSuite) TestGetActivity_ClampsPaging() {
	s.userService.EXPECT().
		GetActivity(s.userID, 0, services.DefaultActivityLimit).
		Return([]*models.AuditLog{}, int64(0), nil)

	c, rec := newJSONContext(s.e, http.MethodGet, "/api/users/activity?offset=-3&limit=1000", nil)
	authenticate(c, s.userID)

	s.NoError(s.handler.GetActivity(c))
	s.Equal(http.StatusOK, rec.Code)
}
