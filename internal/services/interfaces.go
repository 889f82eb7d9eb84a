package services

import (
	"context"
	"time"

	"finance-assistant/internal/analytics"
	"finance-assistant/internal/dto"
	"finance-assistant/internal/models"

	"github.com/google/uuid"
)

type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*dto.AuthResponse, error)
	Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.AuthResponse, error)
	RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.AuthResponse, error)
	Logout(accessToken, refreshToken, ipAddress, userAgent string) error
	CleanupExpiredTokens() (int64, error)
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

// AuditServiceInterface defines the contract for audit logging operations
type AuditServiceInterface interface {
	CreateAuditLog(log *models.AuditLog) error
	GetUserActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	LogProfileUpdate(userID uuid.UUID, ipAddress, userAgent string, changes map[string]interface{}) error
	LogPasswordUpdate(userID uuid.UUID, ipAddress, userAgent string) error
	LogUserDeleted(userID uuid.UUID, ipAddress, userAgent string) error
	PurgeOlderThan(retention time.Duration) (int64, error)
}

// UserServiceInterface defines the self-service profile operations of the authenticated user
type UserServiceInterface interface {
	GetProfile(userID uuid.UUID) (*models.User, error)
	UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest, ipAddress, userAgent string) (*models.User, error)
	ChangePassword(userID uuid.UUID, req *dto.ChangePasswordRequest, ipAddress, userAgent string) error
	DeleteAccount(userID uuid.UUID, ipAddress, userAgent string) error
	GetActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
}

// CategoryServiceInterface manages the default and user-defined transaction categories
type CategoryServiceInterface interface {
	ListCategories(userID uuid.UUID, categoryType models.TransactionType) ([]models.Category, error)
	GetCategory(userID, categoryID uuid.UUID) (*models.Category, error)
	CreateCategory(userID uuid.UUID, req *dto.CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(userID, categoryID uuid.UUID, req *dto.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(userID, categoryID uuid.UUID) error
}

// TransactionServiceInterface defines the income and expense bookkeeping operations
type TransactionServiceInterface interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*models.Transaction, error)
	GetTransaction(userID, transactionID uuid.UUID) (*models.Transaction, error)
	ListTransactions(filters models.TransactionFilters) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, req *dto.UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error
}

// DashboardServiceInterface computes the dashboard views over a user's transactions
type DashboardServiceInterface interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.BalanceSummary, error)
	GetMonthlySummary(ctx context.Context, userID uuid.UUID, year int) ([]models.MonthlySummary, error)
	GetRecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error)
	GetSpendingByCategory(ctx context.Context, userID uuid.UUID, window *analytics.DateRange) (*models.SpendingBreakdown, error)
	GetFinancialTrends(ctx context.Context, userID uuid.UUID, window analytics.DateRange) ([]models.TrendPoint, error)
}

// RecurringProcessorInterface materialises due recurring transactions
type RecurringProcessorInterface interface {
	ProcessDue(ctx context.Context, now time.Time) (int, error)
	Run(ctx context.Context, interval time.Duration)
}

type DemoDataServiceInterface interface {
	SeedUser(ctx context.Context, email string, months int, end time.Time) (int, error)
	Generate(userID uuid.UUID, categories []models.Category, start, end models.Date) []*models.Transaction
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}
