package handlers

import (
	stderrors "errors"
	"net/http"

	"finance-assistant/internal/dto"
	"finance-assistant/internal/errors"
	"finance-assistant/internal/models"
	"finance-assistant/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandler handles default and user-defined categories
type CategoryHandler struct {
	categoryService services.CategoryServiceInterface
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService services.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// ListCategories returns the default categories followed by the user's own
// @Summary List categories
// @Tags Categories
// @Security BearerAuth
// @Produce json
// @Param type query string false "Category type" Enums(INCOME, EXPENSE)
// @Success 200 {object} SuccessResponse{data=[]dto.CategoryResponse}
// @Router /api/categories [get]
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var filters dto.CategoryFilters
	if err := bindRequest(c, &filters, fromQuery); err != nil {
		return SendRequestError(c, err)
	}

	categories, err := h.categoryService.ListCategories(userID, models.TransactionType(filters.Type))
	if err != nil {
		return h.handleServiceError(c, err)
	}

	response := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		response = append(response, dto.NewCategoryResponse(&categories[i]))
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: response})
}

// GetCategory returns a single visible category
// @Summary Get category
// @Tags Categories
// @Security BearerAuth
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Success 200 {object} SuccessResponse{data=dto.CategoryResponse}
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Router /api/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.CategoryInvalidID)
	}

	category, err := h.categoryService.GetCategory(userID, categoryID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: dto.NewCategoryResponse(category)})
}

// CreateCategory adds a user-defined category
// @Summary Create category
// @Tags Categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} SuccessResponse{data=dto.CategoryResponse}
// @Failure 409 {object} errors.ErrorResponse "CATEGORY_002 - Duplicate name"
// @Router /api/categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateCategoryRequest
	if err := bindRequest(c, &req, fromBody); err != nil {
		return SendRequestError(c, err)
	}

	category, err := h.categoryService.CreateCategory(userID, &req)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    dto.NewCategoryResponse(category),
		Message: "Category created successfully",
	})
}

// UpdateCategory renames an owned category or changes its icon
// @Summary Update category
// @Tags Categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Param request body dto.UpdateCategoryRequest true "Category"
// @Success 200 {object} SuccessResponse{data=dto.CategoryResponse}
// @Failure 403 {object} errors.ErrorResponse "CATEGORY_004 - Default category"
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.CategoryInvalidID)
	}

	var req dto.UpdateCategoryRequest
	if err := bindRequest(c, &req, fromBody); err != nil {
		return SendRequestError(c, err)
	}

	category, err := h.categoryService.UpdateCategory(userID, categoryID, &req)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    dto.NewCategoryResponse(category),
		Message: "Category updated successfully",
	})
}

// DeleteCategory removes an owned category that no transaction references
// @Summary Delete category
// @Tags Categories
// @Security BearerAuth
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Success 200 {object} SuccessResponse{message=string}
// @Failure 409 {object} errors.ErrorResponse "CATEGORY_003 - Category in use"
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.CategoryInvalidID)
	}

	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Category deleted successfully",
	})
}

func (h *CategoryHandler) handleServiceError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, services.ErrCategoryNotFound):
		return SendError(c, errors.CategoryNotFound)
	case stderrors.Is(err, services.ErrCategoryAlreadyExists):
		return SendError(c, errors.CategoryAlreadyExists)
	case stderrors.Is(err, services.ErrCategoryInUse):
		return SendError(c, errors.CategoryInUse)
	case stderrors.Is(err, services.ErrDefaultCategoryImmutable):
		return SendError(c, errors.CategoryDefaultImmutable)
	case stderrors.Is(err, services.ErrInvalidCategoryType):
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	case stderrors.Is(err, models.ErrCategoryNameRequired):
		return SendError(c, errors.ValidationRequiredField, errors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
