package handlers

import (
	stderrors "errors"
	"net/http"

	"finance-assistant/internal/analytics"
	"finance-assistant/internal/dto"
	"finance-assistant/internal/errors"
	"finance-assistant/internal/models"
	"finance-assistant/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	maxRecentLimit = 100
	minSummaryYear = 1900
	maxSummaryYear = 9999
)

// DashboardHandler serves the aggregated dashboard views. Responses are the bare view shapes.
type DashboardHandler struct {
	dashboardService services.DashboardServiceInterface
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService services.DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetBalance returns all-time income, expense and current balance
// @Summary Balance
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.BalanceSummary
// @Router /api/transactions/dashboard/balance [get]
func (h *DashboardHandler) GetBalance(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	balance, err := h.dashboardService.GetBalance(c.Request().Context(), userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, balance)
}

// GetMonthlySummary returns twelve months of income and expense for a year
// @Summary Monthly summary
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Param year query int false "Calendar year, defaults to the current year"
// @Success 200 {array} models.MonthlySummary
// @Failure 400 {object} errors.ErrorResponse "DASHBOARD_003 - Invalid year"
// @Router /api/transactions/dashboard/monthly-summary [get]
func (h *DashboardHandler) GetMonthlySummary(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	year, err := getStrictIntParam(c, "year", 0)
	if err != nil {
		return SendError(c, errors.DashboardInvalidYear, errors.WithDetails(err.Error()))
	}
	if year != 0 && (year < minSummaryYear || year > maxSummaryYear) {
		return SendError(c, errors.DashboardInvalidYear)
	}

	summary, err := h.dashboardService.GetMonthlySummary(c.Request().Context(), userID, year)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}

// GetRecentTransactions returns the newest transactions
// @Summary Recent transactions
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Number of transactions (1-100)" default(5)
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} errors.ErrorResponse "DASHBOARD_002 - Invalid limit"
// @Router /api/transactions/dashboard/recent [get]
func (h *DashboardHandler) GetRecentTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	limit, err := getStrictIntParam(c, "limit", analytics.DefaultRecentLimit)
	if err != nil {
		return SendError(c, errors.DashboardInvalidLimit, errors.WithDetails(err.Error()))
	}
	if limit < 1 || limit > maxRecentLimit {
		return SendError(c, errors.DashboardInvalidLimit)
	}

	transactions, err := h.dashboardService.GetRecentTransactions(c.Request().Context(), userID, limit)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	response := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		response = append(response, dto.NewTransactionResponse(&transactions[i]))
	}

	return c.JSON(http.StatusOK, response)
}

// GetSpendingCategories returns the expense breakdown by category
// @Summary Spending by category
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD), requires endDate"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD), requires startDate"
// @Success 200 {object} models.SpendingBreakdown
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or DASHBOARD_001"
// @Router /api/transactions/dashboard/spending-categories [get]
func (h *DashboardHandler) GetSpendingCategories(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var query dto.SpendingCategoriesQuery
	if err := bindRequest(c, &query, fromQuery); err != nil {
		return SendRequestError(c, err)
	}

	var window *analytics.DateRange
	if query.StartDate != "" && query.EndDate != "" {
		parsed, err := parseDateRange(query.StartDate, query.EndDate)
		if err != nil {
			return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
		}
		window = &parsed
	}

	breakdown, err := h.dashboardService.GetSpendingByCategory(c.Request().Context(), userID, window)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, breakdown)
}

// GetFinancialTrends returns the running balance at the end of each month in the window
// @Summary Financial trends
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Param startDate query string true "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string true "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {array} models.TrendPoint
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or DASHBOARD_001"
// @Router /api/transactions/dashboard/financial-trends [get]
func (h *DashboardHandler) GetFinancialTrends(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var query dto.FinancialTrendsQuery
	if err := bindRequest(c, &query, fromQuery); err != nil {
		return SendRequestError(c, err)
	}

	window, err := parseDateRange(query.StartDate, query.EndDate)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}

	trends, err := h.dashboardService.GetFinancialTrends(c.Request().Context(), userID, window)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, trends)
}

func parseDateRange(startDate, endDate string) (analytics.DateRange, error) {
	start, err := models.ParseDate(startDate)
	if err != nil {
		return analytics.DateRange{}, err
	}
	end, err := models.ParseDate(endDate)
	if err != nil {
		return analytics.DateRange{}, err
	}
	return analytics.DateRange{Start: start, End: end}, nil
}

func (h *DashboardHandler) handleServiceError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, services.ErrInvalidDateRange):
		return SendError(c, errors.DashboardInvalidDateRange)
	case stderrors.Is(err, services.ErrCategoryIntegrity):
		return SendError(c, errors.SystemInternalError, errors.WithDetails("Transaction data references a missing category"))
	default:
		return SendSystemError(c, err)
	}
}
