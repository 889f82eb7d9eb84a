package services

import (
	"errors"
	"fmt"
	"strings"

	"finance-assistant/internal/dto"
	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound         = errors.New("category not found")
	ErrCategoryAlreadyExists    = errors.New("a category with this name already exists")
	ErrCategoryInUse            = errors.New("category is referenced by transactions")
	ErrDefaultCategoryImmutable = errors.New("default categories cannot be modified")
	ErrInvalidCategoryType      = errors.New("category type must be INCOME or EXPENSE")
)

// CategoryService manages the categories visible to a user
type CategoryService struct {
	categoryRepo    repositories.CategoryRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repositories.CategoryRepositoryInterface, transactionRepo repositories.TransactionRepositoryInterface) CategoryServiceInterface {
	return &CategoryService{
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// ListCategories returns the defaults followed by the user's own categories.
// An empty categoryType lists both kinds.
func (s *CategoryService) ListCategories(userID uuid.UUID, categoryType models.TransactionType) ([]models.Category, error) {
	if categoryType != "" && !models.IsValidTransactionType(categoryType) {
		return nil, ErrInvalidCategoryType
	}

	categories, err := s.categoryRepo.GetVisibleToUser(userID, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a category the user can see. Other users' categories are reported as not found.
func (s *CategoryService) GetCategory(userID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if !category.IsVisibleTo(userID) {
		return nil, ErrCategoryNotFound
	}

	return category, nil
}

func (s *CategoryService) CreateCategory(userID uuid.UUID, req *dto.CreateCategoryRequest) (*models.Category, error) {
	categoryType := models.TransactionType(strings.ToUpper(req.Type))
	if !models.IsValidTransactionType(categoryType) {
		return nil, ErrInvalidCategoryType
	}

	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameAvailable(userID, name, uuid.Nil); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: &userID,
		Name:   name,
		Type:   categoryType,
		Icon:   strings.TrimSpace(req.Icon),
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// UpdateCategory renames or re-icons one of the user's own categories
func (s *CategoryService) UpdateCategory(userID, categoryID uuid.UUID, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.getOwned(userID, categoryID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if !strings.EqualFold(name, category.Name) {
		if err := s.ensureNameAvailable(userID, name, category.ID); err != nil {
			return nil, err
		}
	}

	category.Name = name
	category.Icon = strings.TrimSpace(req.Icon)

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory removes one of the user's own categories that no transaction references
func (s *CategoryService) DeleteCategory(userID, categoryID uuid.UUID) error {
	category, err := s.getOwned(userID, categoryID)
	if err != nil {
		return err
	}

	count, err := s.transactionRepo.CountByCategoryID(category.ID)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(category.ID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func (s *CategoryService) getOwned(userID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.GetCategory(userID, categoryID)
	if err != nil {
		return nil, err
	}

	if category.IsDefault {
		return nil, ErrDefaultCategoryImmutable
	}

	return category, nil
}

// ensureNameAvailable rejects names already used among the user's own categories
func (s *CategoryService) ensureNameAvailable(userID uuid.UUID, name string, excludeID uuid.UUID) error {
	exists, err := s.categoryRepo.ExistsByNameForUser(userID, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return ErrCategoryAlreadyExists
	}
	return nil
}
