package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"finance-assistant/internal/dto"
	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"

	"github.com/google/uuid"
)

// MaxProfilePictureBytes caps the decoded size of an uploaded profile picture.
const MaxProfilePictureBytes = 2 << 20

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrIncorrectPassword     = errors.New("current password is incorrect")
	ErrInvalidProfilePicture = errors.New("profile picture must be base64 encoded and at most 2MB")
	ErrInvalidProfile        = errors.New("invalid profile")
)

// UserService handles the authenticated user's own profile
type UserService struct {
	userRepo         repositories.UserRepositoryInterface
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface
	passwordService  PasswordServiceInterface
	auditService     AuditServiceInterface
}

// NewUserService creates a new user profile service
func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	auditService AuditServiceInterface,
) UserServiceInterface {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		passwordService:  passwordService,
		auditService:     auditService,
	}
}

// GetProfile retrieves the user by ID
func (s *UserService) GetProfile(userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateProfile applies the non-nil fields of req
func (s *UserService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest, ipAddress, userAgent string) (*models.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
		changes["first_name"] = user.FirstName
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
		changes["last_name"] = user.LastName
	}
	if req.Telephone != nil {
		user.Telephone = strings.TrimSpace(*req.Telephone)
		changes["telephone"] = user.Telephone
	}
	if req.Status != nil {
		user.Status = *req.Status
		changes["status"] = user.Status
	}
	if req.ProfilePicture != nil {
		picture, err := decodeProfilePicture(*req.ProfilePicture)
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = picture
		changes["profile_picture"] = len(picture) > 0
	}
	if req.MonthlyBudget != nil {
		if req.MonthlyBudget.IsNegative() {
			return nil, fmt.Errorf("%w: monthly budget cannot be negative", ErrInvalidProfile)
		}
		budget := req.MonthlyBudget.Round(2)
		user.MonthlyBudget = &budget
		changes["monthly_budget"] = budget.StringFixed(2)
	}
	if req.RiskTolerance != nil {
		user.RiskTolerance = strings.ToUpper(*req.RiskTolerance)
		changes["risk_tolerance"] = user.RiskTolerance
	}
	if req.FinancialGoals != nil {
		user.FinancialGoals = *req.FinancialGoals
		changes["financial_goals"] = true
	}

	if len(changes) == 0 {
		return user, nil
	}

	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := s.auditService.LogProfileUpdate(userID, ipAddress, userAgent, changes); err != nil {
		slog.Warn("failed to audit profile update", "error", err, "user_id", userID)
	}

	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and ends all other sessions
func (s *UserService) ChangePassword(userID uuid.UUID, req *dto.ChangePasswordRequest, ipAddress, userAgent string) error {
	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	if !s.passwordService.ComparePassword(req.CurrentPassword, user.PasswordHash) {
		return ErrIncorrectPassword
	}

	hash, err := s.passwordService.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(userID); err != nil {
		slog.Warn("failed to revoke refresh tokens after password change", "error", err, "user_id", userID)
	}

	if err := s.auditService.LogPasswordUpdate(userID, ipAddress, userAgent); err != nil {
		slog.Warn("failed to audit password update", "error", err, "user_id", userID)
	}

	return nil
}

// DeleteAccount removes the user together with their categories, transactions and tokens
func (s *UserService) DeleteAccount(userID uuid.UUID, ipAddress, userAgent string) error {
	if userID == uuid.Nil {
		return ErrInvalidUserID
	}

	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.auditService.LogUserDeleted(userID, ipAddress, userAgent); err != nil {
		slog.Warn("failed to audit user deletion", "error", err, "user_id", userID)
	}

	return nil
}

// GetActivity returns the user's audit trail
func (s *UserService) GetActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	return s.auditService.GetUserActivity(userID, offset, limit)
}

// decodeProfilePicture turns the wire representation into bytes. An empty string clears the picture.
func decodeProfilePicture(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, nil
	}

	// data URLs are accepted as sent by browsers
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+len(";base64,"):]
	}

	picture, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidProfilePicture
	}
	if len(picture) > MaxProfilePictureBytes {
		return nil, ErrInvalidProfilePicture
	}

	return picture, nil
}
