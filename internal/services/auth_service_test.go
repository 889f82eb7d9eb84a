package services

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"testing"
	"time"

	"finance-assistant/internal/dto"
	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"
	"finance-assistant/internal/repositories/repository_mocks"
	"finance-assistant/internal/services/service_mocks"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctrl                 *gomock.Controller
	userRepo             *repository_mocks.MockUserRepositoryInterface
	refreshTokenRepo     *repository_mocks.MockRefreshTokenRepositoryInterface
	auditRepo            *repository_mocks.MockAuditLogRepositoryInterface
	blacklistedTokenRepo *repository_mocks.MockBlacklistedTokenRepositoryInterface
	passwordService      *service_mocks.MockPasswordServiceInterface
	tokenService         *service_mocks.MockTokenServiceInterface
	metrics              *service_mocks.MockMetricsRecorderInterface
	authService          AuthServiceInterface
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.tokenService = service_mocks.NewMockTokenServiceInterface(s.ctrl)
	s.refreshTokenRepo = repository_mocks.NewMockRefreshTokenRepositoryInterface(s.ctrl)
	s.auditRepo = repository_mocks.NewMockAuditLogRepositoryInterface(s.ctrl)
	s.blacklistedTokenRepo = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.passwordService = service_mocks.NewMockPasswordServiceInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.metrics.EXPECT().IncrementCounter(MetricAuthenticationEvent, gomock.Any()).AnyTimes()
	s.authService = NewAuthService(s.userRepo, s.refreshTokenRepo, s.auditRepo, s.blacklistedTokenRepo, s.passwordService, s.tokenService, s.metrics, slog.Default())
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) newUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        gofakeit.Email(),
		PasswordHash: "hashed_password",
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		Status:       models.UserStatusActive,
	}
}

func (s *AuthServiceTestSuite) expectTokenIssue() {
	s.tokenService.EXPECT().GenerateAccessToken(gomock.Any()).Return("access_token", time.Now().Add(time.Hour), nil)
	s.tokenService.EXPECT().GenerateRefreshToken(gomock.Any()).Return("refresh_token", time.Now().Add(24*time.Hour), nil)
	s.refreshTokenRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(token *models.RefreshToken) error {
		s.Equal(hashToken("refresh_token"), token.TokenHash)
		return nil
	})
}

func (s *AuthServiceTestSuite) TestRegister_Success() {
	picture := []byte{0x89, 0x50, 0x4e, 0x47}
	req := &dto.RegisterRequest{
		Email:          "  New@Example.com ",
		Password:       "SecurePass123",
		FirstName:      "John",
		LastName:       "Doe",
		ProfilePicture: base64.StdEncoding.EncodeToString(picture),
	}

	s.userRepo.EXPECT().ExistsByEmail("new@example.com").Return(false, nil)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(user *models.User) error {
		s.Equal("new@example.com", user.Email)
		s.Equal("hashed_password", user.PasswordHash)
		s.Equal(picture, user.ProfilePicture)
		user.ID = uuid.New()
		return nil
	})
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)
	s.expectTokenIssue()

	resp, err := s.authService.Register(req, "192.168.1.1", "Mozilla/5.0")

	s.Require().NoError(err)
	s.Equal("access_token", resp.Token)
	s.Equal("refresh_token", resp.RefreshToken)
	s.Equal("Bearer", resp.TokenType)
	s.Equal("new@example.com", resp.Email)
	s.Equal("John", resp.FirstName)
	s.Equal(req.ProfilePicture, resp.ProfilePicture)
	s.NotEmpty(resp.UserID)
	s.Greater(resp.ExpiresIn, int64(0))
}

func (s *AuthServiceTestSuite) TestRegister_EmailTaken() {
	req := &dto.RegisterRequest{Email: "taken@example.com", Password: "SecurePass123", FirstName: "A", LastName: "B"}

	s.userRepo.EXPECT().ExistsByEmail("taken@example.com").Return(true, nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(log *models.AuditLog) error {
		s.Nil(log.UserID)
		s.Equal("email_already_exists", log.Metadata["reason"])
		return nil
	})

	resp, err := s.authService.Register(req, "192.168.1.1", "Mozilla/5.0")
	s.Nil(resp)
	s.Equal(ErrUserAlreadyExists, err)
}

func (s *AuthServiceTestSuite) TestRegister_CreateRace() {
	req := &dto.RegisterRequest{Email: "race@example.com", Password: "SecurePass123", FirstName: "A", LastName: "B"}

	s.userRepo.EXPECT().ExistsByEmail("race@example.com").Return(false, nil)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(gomock.Any()).Return(repositories.ErrUserAlreadyExists)

	_, err := s.authService.Register(req, "", "")
	s.Equal(ErrUserAlreadyExists, err)
}

func (s *AuthServiceTestSuite) TestRegister_InvalidProfilePicture() {
	req := &dto.RegisterRequest{Email: "pic@example.com", Password: "SecurePass123", FirstName: "A", LastName: "B", ProfilePicture: "%%%"}

	s.userRepo.EXPECT().ExistsByEmail("pic@example.com").Return(false, nil)

	_, err := s.authService.Register(req, "", "")
	s.ErrorIs(err, ErrInvalidProfilePicture)
}

func (s *AuthServiceTestSuite) TestRegister_WeakPassword() {
	req := &dto.RegisterRequest{Email: "weak@example.com", Password: "weakpass", FirstName: "A", LastName: "B"}

	s.userRepo.EXPECT().ExistsByEmail("weak@example.com").Return(false, nil)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("", ErrPasswordNoUppercase)

	_, err := s.authService.Register(req, "", "")
	s.ErrorIs(err, ErrPasswordNoUppercase)
	s.True(IsPasswordPolicyError(err))
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := s.newUser()
	req := &dto.LoginRequest{Email: user.Email, Password: "SecurePass123"}

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(req.Password, user.PasswordHash).Return(true)
	s.userRepo.EXPECT().ResetFailedLoginAttempts(user.ID).Return(nil)
	s.expectTokenIssue()
	s.auditRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(log *models.AuditLog) error {
		s.Equal(models.AuditActionLogin, log.Action)
		s.Equal(&user.ID, log.UserID)
		return nil
	})

	resp, err := s.authService.Login(req, "192.168.1.1", "Mozilla/5.0")
	s.Require().NoError(err)
	s.Equal(user.ID.String(), resp.UserID)
	s.Equal("access_token", resp.Token)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownUser() {
	req := &dto.LoginRequest{Email: "ghost@example.com", Password: "whatever"}

	s.userRepo.EXPECT().GetByEmail(req.Email).Return(nil, repositories.ErrUserNotFound)
	s.auditRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(log *models.AuditLog) error {
		s.Equal(models.AuditActionFailedLogin, log.Action)
		s.Equal("user_not_found", log.Metadata["reason"])
		return nil
	})

	_, err := s.authService.Login(req, "", "")
	s.Equal(ErrInvalidCredentials, err)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPasswordLocksOnLastAttempt() {
	user := s.newUser()
	user.FailedLoginAttempts = models.MaxFailedLoginAttempts - 1
	req := &dto.LoginRequest{Email: user.Email, Password: "wrong"}

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(req.Password, user.PasswordHash).Return(false)
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(user).Return(nil)
	gomock.InOrder(
		s.auditRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(log *models.AuditLog) error {
			s.Equal(models.AuditActionAccountLocked, log.Action)
			return nil
		}),
		s.auditRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(log *models.AuditLog) error {
			s.Equal(models.AuditActionFailedLogin, log.Action)
			return nil
		}),
	)

	_, err := s.authService.Login(req, "", "")
	s.Equal(ErrInvalidCredentials, err)
	s.True(user.IsLocked())
}

func (s *AuthServiceTestSuite) TestLogin_Locked() {
	user := s.newUser()
	user.Lock()

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	_, err := s.authService.Login(&dto.LoginRequest{Email: user.Email, Password: "SecurePass123"}, "", "")
	s.Equal(ErrAccountLocked, err)
}

func (s *AuthServiceTestSuite) TestLogin_Inactive() {
	user := s.newUser()
	user.Status = models.UserStatusInactive

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(true)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	_, err := s.authService.Login(&dto.LoginRequest{Email: user.Email, Password: "SecurePass123"}, "", "")
	s.Equal(ErrAccountInactive, err)
}

func (s *AuthServiceTestSuite) TestLogin_AuditFailureDoesNotBlock() {
	user := s.newUser()

	s.userRepo.EXPECT().GetByEmail(user.Email).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(true)
	s.userRepo.EXPECT().ResetFailedLoginAttempts(user.ID).Return(errors.New("db down"))
	s.expectTokenIssue()
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(errors.New("db down"))

	resp, err := s.authService.Login(&dto.LoginRequest{Email: user.Email, Password: "SecurePass123"}, "", "")
	s.NoError(err)
	s.NotNil(resp)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_Rotates() {
	user := s.newUser()
	stored := &models.RefreshToken{ID: uuid.New(), UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}

	s.tokenService.EXPECT().ValidateRefreshToken("old_refresh").Return(&models.CustomClaims{UserID: user.ID.String()}, nil)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(hashToken("old_refresh")).Return(stored, nil)
	s.userRepo.EXPECT().GetByID(user.ID).Return(user, nil)
	s.refreshTokenRepo.EXPECT().Revoke(stored.ID).Return(nil)
	s.expectTokenIssue()
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	resp, err := s.authService.RefreshTokens("old_refresh", "", "")
	s.Require().NoError(err)
	s.Equal("refresh_token", resp.RefreshToken)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_InvalidJWT() {
	s.tokenService.EXPECT().ValidateRefreshToken("garbage").Return(nil, ErrInvalidToken)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	_, err := s.authService.RefreshTokens("garbage", "", "")
	s.Equal(ErrInvalidRefreshToken, err)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_Revoked() {
	userID := uuid.New()
	revokedAt := time.Now()
	stored := &models.RefreshToken{ID: uuid.New(), UserID: userID, ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt}

	s.tokenService.EXPECT().ValidateRefreshToken("reused").Return(&models.CustomClaims{UserID: userID.String()}, nil)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(hashToken("reused")).Return(stored, nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(log *models.AuditLog) error {
		s.Equal(&userID, log.UserID)
		s.Equal("token_expired_or_revoked", log.Metadata["reason"])
		return nil
	})

	_, err := s.authService.RefreshTokens("reused", "", "")
	s.Equal(ErrInvalidRefreshToken, err)
}

func (s *AuthServiceTestSuite) TestLogout_RevokesPresentedRefreshToken() {
	userID := uuid.New()
	claims := &models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1"},
		UserID:           userID.String(),
	}
	expiry := time.Now().Add(time.Hour)
	stored := &models.RefreshToken{ID: uuid.New(), UserID: userID}

	s.tokenService.EXPECT().ValidateAccessToken("access").Return(claims, nil)
	s.tokenService.EXPECT().GetTokenExpiry("access").Return(expiry, nil)
	s.blacklistedTokenRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(token *models.BlacklistedToken) error {
		s.Equal("jti-1", token.JTI)
		s.Equal(userID, token.UserID)
		s.Equal(expiry, token.ExpiresAt)
		return nil
	})
	s.refreshTokenRepo.EXPECT().GetByTokenHash(hashToken("refresh")).Return(stored, nil)
	s.refreshTokenRepo.EXPECT().Revoke(stored.ID).Return(nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	s.NoError(s.authService.Logout("access", "refresh", "", ""))
}

func (s *AuthServiceTestSuite) TestLogout_RevokesAllWithoutRefreshToken() {
	userID := uuid.New()
	claims := &models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-2"},
		UserID:           userID.String(),
	}

	s.tokenService.EXPECT().ValidateAccessToken("access").Return(claims, nil)
	s.tokenService.EXPECT().GetTokenExpiry("access").Return(time.Now().Add(time.Hour), nil)
	s.blacklistedTokenRepo.EXPECT().Create(gomock.Any()).Return(nil)
	s.refreshTokenRepo.EXPECT().RevokeAllForUser(userID).Return(nil)
	s.auditRepo.EXPECT().Create(gomock.Any()).Return(nil)

	s.NoError(s.authService.Logout("access", "", "", ""))
}

func (s *AuthServiceTestSuite) TestLogout_ExpiredTokenStillBlacklisted() {
	s.tokenService.EXPECT().ValidateAccessToken("expired").Return(nil, ErrExpiredToken)
	s.tokenService.EXPECT().GetJTI("expired").Return("jti-old", nil)
	s.blacklistedTokenRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(token *models.BlacklistedToken) error {
		s.Equal("jti-old", token.JTI)
		return nil
	})

	s.NoError(s.authService.Logout("expired", "", "", ""))
}

func (s *AuthServiceTestSuite) TestCleanupExpiredTokens() {
	s.refreshTokenRepo.EXPECT().DeleteExpired().Return(int64(3), nil)
	s.blacklistedTokenRepo.EXPECT().DeleteExpired().Return(int64(2), nil)

	count, err := s.authService.CleanupExpiredTokens()
	s.NoError(err)
	s.Equal(int64(5), count)
}

func (s *AuthServiceTestSuite) TestCleanupExpiredTokens_Error() {
	s.refreshTokenRepo.EXPECT().DeleteExpired().Return(int64(0), errors.New("db down"))

	_, err := s.authService.CleanupExpiredTokens()
	s.Error(err)
}
