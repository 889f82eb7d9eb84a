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

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService services.TransactionServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService services.TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// ListTransactions retrieves the user's transactions, newest first
// @Summary List transactions
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Param type query string false "Transaction type" Enums(INCOME, EXPENSE)
// @Param categoryId query string false "Category ID (UUID)"
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Page size (max 100)" default(50)
// @Success 200 {object} SuccessResponse{data=dto.ListTransactionsResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or VALIDATION_007"
// @Router /api/transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var query dto.TransactionFilters
	if err := bindRequest(c, &query, fromQuery); err != nil {
		return SendRequestError(c, err)
	}

	filters, err := toTransactionFilters(userID, &query)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	transactions, err := h.transactionService.ListTransactions(filters)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	response := dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(transactions)),
		Pagination: dto.PaginationInfo{
			Offset: filters.Offset,
			Limit:  effectiveLimit(filters.Limit),
			Count:  len(transactions),
		},
	}
	for i := range transactions {
		response.Transactions = append(response.Transactions, dto.NewTransactionResponse(&transactions[i]))
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: response})
}

// GetTransaction returns one of the user's transactions
// @Summary Get transaction
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 200 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Router /api/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionInvalidID)
	}

	txn, err := h.transactionService.GetTransaction(userID, transactionID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: dto.NewTransactionResponse(txn)})
}

// CreateTransaction records an income or expense entry
// @Summary Create transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001, TRANSACTION_002 or CATEGORY_005"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not visible"
// @Router /api/transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateTransactionRequest
	if err := bindRequest(c, &req, fromBody); err != nil {
		return SendRequestError(c, err)
	}

	txn, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, &req)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    dto.NewTransactionResponse(txn),
		Message: "Transaction created successfully",
	})
}

// UpdateTransaction replaces the editable fields of a transaction
// @Summary Update transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Param request body dto.UpdateTransactionRequest true "Transaction"
// @Success 200 {object} SuccessResponse{data=dto.TransactionResponse}
// @Router /api/transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionInvalidID)
	}

	var req dto.UpdateTransactionRequest
	if err := bindRequest(c, &req, fromBody); err != nil {
		return SendRequestError(c, err)
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request().Context(), userID, transactionID, &req)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    dto.NewTransactionResponse(txn),
		Message: "Transaction updated successfully",
	})
}

// DeleteTransaction removes one of the user's transactions
// @Summary Delete transaction
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 200 {object} SuccessResponse{message=string}
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.TransactionInvalidID)
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), userID, transactionID); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Transaction deleted successfully",
	})
}

func toTransactionFilters(userID uuid.UUID, query *dto.TransactionFilters) (models.TransactionFilters, error) {
	filters := models.TransactionFilters{
		UserID: userID,
		Type:   models.TransactionType(query.Type),
		Offset: query.Offset,
		Limit:  query.Limit,
	}

	if query.StartDate != "" {
		start, err := models.ParseDate(query.StartDate)
		if err != nil {
			return filters, err
		}
		filters.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := models.ParseDate(query.EndDate)
		if err != nil {
			return filters, err
		}
		filters.EndDate = &end
	}
	if query.CategoryID != "" {
		categoryID, err := uuid.Parse(query.CategoryID)
		if err != nil {
			return filters, err
		}
		filters.CategoryID = &categoryID
	}

	return filters, nil
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return services.DefaultTransactionLimit
	}
	if limit > services.MaxTransactionLimit {
		return services.MaxTransactionLimit
	}
	return limit
}

func (h *TransactionHandler) handleServiceError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, services.ErrTransactionNotFound):
		return SendError(c, errors.TransactionNotFound)
	case stderrors.Is(err, services.ErrCategoryNotFound):
		return SendError(c, errors.CategoryNotFound)
	case stderrors.Is(err, services.ErrCategoryTypeMismatch):
		return SendError(c, errors.CategoryTypeMismatch)
	case stderrors.Is(err, services.ErrInvalidAmountPrecision), stderrors.Is(err, models.ErrInvalidAmount):
		return SendError(c, errors.TransactionInvalidAmount, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrFrequencyRequired), stderrors.Is(err, models.ErrInvalidFrequency):
		return SendError(c, errors.TransactionInvalidFrequency, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrInvalidCategoryType), stderrors.Is(err, models.ErrInvalidTransactionType):
		return SendError(c, errors.TransactionInvalidType)
	case stderrors.Is(err, services.ErrInvalidSchedule), stderrors.Is(err, services.ErrInvalidTransaction):
		return SendError(c, errors.TransactionValidationFailed, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrInvalidDateRange):
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
