package dto

import (
	"time"

	"finance-assistant/internal/models"

	"github.com/shopspring/decimal"
)

// UpdateProfileRequest carries the editable profile fields. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName      *string          `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName       *string          `json:"lastName" validate:"omitempty,min=1,max=100"`
	Telephone      *string          `json:"telephone" validate:"omitempty,phone"`
	Status         *string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	ProfilePicture *string          `json:"profilePicture"`
	MonthlyBudget  *decimal.Decimal `json:"monthlyBudget"`
	RiskTolerance  *string          `json:"riskTolerance" validate:"omitempty,risk_tolerance"`
	FinancialGoals *string          `json:"financialGoals" validate:"omitempty,max=1000"`
}

// ChangePasswordRequest contains the current and new password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

// UserProfileResponse represents the authenticated user's profile
type UserProfileResponse struct {
	ID             string           `json:"id"`
	Email          string           `json:"email"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Telephone      string           `json:"telephone,omitempty"`
	Status         string           `json:"status"`
	ProfilePicture string           `json:"profilePicture,omitempty"`
	MonthlyBudget  *decimal.Decimal `json:"monthlyBudget,omitempty"`
	RiskTolerance  string           `json:"riskTolerance,omitempty"`
	FinancialGoals string           `json:"financialGoals,omitempty"`
	LastLoginAt    *time.Time       `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// NewUserProfileResponse maps a user onto its public profile
func NewUserProfileResponse(user *models.User) *UserProfileResponse {
	return &UserProfileResponse{
		ID:             user.ID.String(),
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Telephone:      user.Telephone,
		Status:         user.Status,
		ProfilePicture: user.ProfilePictureBase64(),
		MonthlyBudget:  user.MonthlyBudget,
		RiskTolerance:  user.RiskTolerance,
		FinancialGoals: user.FinancialGoals,
		LastLoginAt:    user.LastLoginAt,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// AuditLogResponse is one entry of the user's activity trail
type AuditLogResponse struct {
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
