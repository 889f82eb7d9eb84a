package services

import (
	"errors"
	"fmt"
	"time"

	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"

	"github.com/google/uuid"
)

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

// AuditService handles audit logging operations
type AuditService struct {
	repo repositories.AuditLogRepositoryInterface
}

// NewAuditService creates a new audit service
func NewAuditService(repo repositories.AuditLogRepositoryInterface) AuditServiceInterface {
	return &AuditService{
		repo: repo,
	}
}

var (
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrInvalidAuditLog = errors.New("invalid audit log")
)

// ValidateActivityType validates that the activity type is one of the allowed types
func ValidateActivityType(action string) error {
	validActions := map[string]bool{
		models.AuditActionLogin:           true,
		models.AuditActionLogout:          true,
		models.AuditActionRegister:        true,
		models.AuditActionFailedLogin:     true,
		models.AuditActionAccountLocked:   true,
		models.AuditActionTokenRefresh:    true,
		models.AuditActionProfileUpdated:  true,
		models.AuditActionPasswordUpdated: true,
		models.AuditActionUserDeleted:     true,
	}

	if !validActions[action] {
		return fmt.Errorf("invalid activity type: %s", action)
	}
	return nil
}

// CreateAuditLog creates a new audit log entry with validation
func (s *AuditService) CreateAuditLog(log *models.AuditLog) error {
	if log == nil {
		return ErrInvalidAuditLog
	}

	if err := ValidateActivityType(log.Action); err != nil {
		return err
	}

	if err := s.repo.Create(log); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// GetUserActivity returns a page of the user's audit trail, newest first
func (s *AuditService) GetUserActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, ErrInvalidUserID
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}

	return s.repo.GetByUserID(userID, offset, limit)
}

// LogProfileUpdate records which profile fields changed
func (s *AuditService) LogProfileUpdate(userID uuid.UUID, ipAddress, userAgent string, changes map[string]interface{}) error {
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionProfileUpdated,
		Resource:   models.AuditResourceUser,
		ResourceID: userID.String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Metadata:   changes,
	}
	return s.CreateAuditLog(log)
}

// LogPasswordUpdate records a self-service password change
func (s *AuditService) LogPasswordUpdate(userID uuid.UUID, ipAddress, userAgent string) error {
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionPasswordUpdated,
		Resource:   models.AuditResourceUser,
		ResourceID: userID.String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	}
	return s.CreateAuditLog(log)
}

// LogUserDeleted records an account deletion. The entry outlives the user with a null user ID.
func (s *AuditService) LogUserDeleted(userID uuid.UUID, ipAddress, userAgent string) error {
	log := &models.AuditLog{
		Action:     models.AuditActionUserDeleted,
		Resource:   models.AuditResourceUser,
		ResourceID: userID.String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	}
	return s.CreateAuditLog(log)
}

// PurgeOlderThan deletes audit entries older than the retention period
func (s *AuditService) PurgeOlderThan(retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %s", retention)
	}

	count, err := s.repo.DeleteOlderThan(retention)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", err)
	}
	return count, nil
}
