package dto

import (
	"time"

	"finance-assistant/internal/models"

	"github.com/google/uuid"
)

// CreateCategoryRequest contains the data for a user-defined category
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Type string `json:"type" validate:"required,transaction_type"`
	Icon string `json:"icon" validate:"omitempty,max=100"`
}

// UpdateCategoryRequest renames a category or changes its icon
type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Icon string `json:"icon" validate:"omitempty,max=100"`
}

// CategoryFilters narrows the category listing by type
type CategoryFilters struct {
	Type string `query:"type" validate:"omitempty,transaction_type"`
}

// CategoryResponse represents a category visible to the user
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Icon      string    `json:"icon,omitempty"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewCategoryResponse(category *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Type:      string(category.Type),
		Icon:      category.Icon,
		IsDefault: category.IsDefault,
		CreatedAt: category.CreatedAt,
	}
}
