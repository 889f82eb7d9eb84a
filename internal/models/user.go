package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"

	RiskToleranceLow    = "LOW"
	RiskToleranceMedium = "MEDIUM"
	RiskToleranceHigh   = "HIGH"

	MaxFailedLoginAttempts = 5
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

type User struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Email               string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string           `gorm:"type:varchar(255);not null" json:"-"`
	FirstName           string           `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName            string           `gorm:"type:varchar(100);not null" json:"lastName"`
	Telephone           string           `gorm:"type:varchar(30)" json:"telephone,omitempty"`
	Status              string           `gorm:"type:varchar(20);not null" json:"status"`
	ProfilePicture      []byte           `json:"-"`
	MonthlyBudget       *decimal.Decimal `gorm:"type:decimal(15,2)" json:"monthlyBudget,omitempty"`
	RiskTolerance       string           `gorm:"type:varchar(20)" json:"riskTolerance,omitempty"`
	FinancialGoals      string           `gorm:"type:varchar(1000)" json:"financialGoals,omitempty"`
	FailedLoginAttempts int              `gorm:"not null" json:"-"`
	LockedAt            *time.Time       `json:"-"`
	LastLoginAt         *time.Time       `json:"lastLoginAt,omitempty"`
	CreatedAt           time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt           time.Time        `gorm:"not null" json:"updatedAt"`

	RefreshTokens     []RefreshToken     `gorm:"foreignKey:UserID" json:"-"`
	BlacklistedTokens []BlacklistedToken `gorm:"foreignKey:UserID" json:"-"`
	Categories        []Category         `gorm:"foreignKey:UserID" json:"-"`
	Transactions      []Transaction      `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	if u.Status == "" {
		u.Status = UserStatusActive
	}

	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	return u.Validate()
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	if isMapUpdate(tx) {
		return nil
	}

	u.UpdatedAt = time.Now()
	return u.Validate()
}

func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}

	if !emailRegex.MatchString(u.Email) {
		return errors.New("invalid email format")
	}

	if u.FirstName == "" {
		return errors.New("first name is required")
	}

	if u.LastName == "" {
		return errors.New("last name is required")
	}

	if u.MonthlyBudget != nil && u.MonthlyBudget.IsNegative() {
		return errors.New("monthly budget cannot be negative")
	}

	if u.RiskTolerance != "" && !IsValidRiskTolerance(u.RiskTolerance) {
		return fmt.Errorf("invalid risk tolerance: %s", u.RiskTolerance)
	}

	return nil
}

func (u *User) IsLocked() bool {
	return u.LockedAt != nil
}

func (u *User) Lock() {
	now := time.Now()
	u.LockedAt = &now
	u.FailedLoginAttempts = MaxFailedLoginAttempts
}

func (u *User) Unlock() {
	u.LockedAt = nil
	u.FailedLoginAttempts = 0
}

func (u *User) IncrementFailedAttempts() {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLoginAttempts {
		u.Lock()
	}
}

func (u *User) ResetFailedAttempts() {
	u.FailedLoginAttempts = 0
}

func (u *User) UpdateLastLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

// ProfilePictureBase64 returns the stored picture encoded for the wire, or "" when none is set.
func (u *User) ProfilePictureBase64() string {
	if len(u.ProfilePicture) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(u.ProfilePicture)
}

func (u *User) TableName() string {
	return "users"
}

// isMapUpdate is true for Updates(map[string]interface{}) calls, where the hook receiver is an
// empty model and only the listed columns change.
func isMapUpdate(tx *gorm.DB) bool {
	if tx == nil || tx.Statement == nil || tx.Statement.Dest == nil {
		return false
	}
	_, ok := tx.Statement.Dest.(map[string]interface{})
	return ok
}

func IsValidRiskTolerance(value string) bool {
	switch value {
	case RiskToleranceLow, RiskToleranceMedium, RiskToleranceHigh:
		return true
	default:
		return false
	}
}
