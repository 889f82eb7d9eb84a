package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCategoryNameRequired = errors.New("category name is required")

// Category groups transactions. Default categories have no owner and are visible to every user.
type Category struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    *uuid.UUID      `gorm:"type:uuid;index" json:"userId,omitempty"`
	Name      string          `gorm:"type:varchar(100);not null" json:"name"`
	Type      TransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Icon      string          `gorm:"type:varchar(100)" json:"icon,omitempty"`
	IsDefault bool            `gorm:"not null" json:"isDefault"`
	CreatedAt time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"not null" json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return c.Validate()
}

func (c *Category) BeforeUpdate(tx *gorm.DB) error {
	if isMapUpdate(tx) {
		return nil
	}

	c.UpdatedAt = time.Now()
	return c.Validate()
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrCategoryNameRequired
	}

	if len(c.Name) > 100 {
		return errors.New("category name must be at most 100 characters")
	}

	if !IsValidTransactionType(c.Type) {
		return ErrInvalidTransactionType
	}

	if c.IsDefault && c.UserID != nil {
		return errors.New("default categories cannot have an owner")
	}

	if !c.IsDefault && c.UserID == nil {
		return errors.New("user categories require an owner")
	}

	return nil
}

// IsOwnedBy reports whether the category belongs to the user (default categories belong to nobody).
func (c *Category) IsOwnedBy(userID uuid.UUID) bool {
	return c.UserID != nil && *c.UserID == userID
}

// IsVisibleTo reports whether the user may reference this category.
func (c *Category) IsVisibleTo(userID uuid.UUID) bool {
	return c.IsDefault || c.IsOwnedBy(userID)
}

func (c *Category) TableName() string {
	return "categories"
}

// DefaultCategories is the catalogue seeded for every installation.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Salary", Type: TransactionTypeIncome, Icon: "work", IsDefault: true},
		{Name: "Freelance", Type: TransactionTypeIncome, Icon: "laptop", IsDefault: true},
		{Name: "Investments", Type: TransactionTypeIncome, Icon: "trending_up", IsDefault: true},
		{Name: "Gifts", Type: TransactionTypeIncome, Icon: "card_giftcard", IsDefault: true},
		{Name: "Food", Type: TransactionTypeExpense, Icon: "restaurant", IsDefault: true},
		{Name: "Transport", Type: TransactionTypeExpense, Icon: "directions_car", IsDefault: true},
		{Name: "Housing", Type: TransactionTypeExpense, Icon: "home", IsDefault: true},
		{Name: "Utilities", Type: TransactionTypeExpense, Icon: "bolt", IsDefault: true},
		{Name: "Entertainment", Type: TransactionTypeExpense, Icon: "movie", IsDefault: true},
		{Name: "Health", Type: TransactionTypeExpense, Icon: "local_hospital", IsDefault: true},
		{Name: "Shopping", Type: TransactionTypeExpense, Icon: "shopping_bag", IsDefault: true},
		{Name: "Education", Type: TransactionTypeExpense, Icon: "school", IsDefault: true},
		{Name: "Other", Type: TransactionTypeExpense, Icon: "category", IsDefault: true},
	}
}
