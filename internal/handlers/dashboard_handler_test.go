package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finance-assistant/internal/analytics"
	"finance-assistant/internal/dto"
	"finance-assistant/internal/models"
	"finance-assistant/internal/services"
	"finance-assistant/internal/services/service_mocks"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestDashboardHandler(t *testing.T) {
	suite.Run(t, new(DashboardHandlerSuite))
}

type DashboardHandlerSuite struct {
	suite.Suite
	ctrl             *gomock.Controller
	dashboardService *service_mocks.MockDashboardServiceInterface
	handler          *DashboardHandler
	e                *echo.Echo
	userID           uuid.UUID
}

func (s *DashboardHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.dashboardService = service_mocks.NewMockDashboardServiceInterface(s.ctrl)
	s.handler = NewDashboardHandler(s.dashboardService)
	s.e = newTestEcho()
	s.userID = uuid.New()
}

func (s *DashboardHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DashboardHandlerSuite) get(target string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newJSONContext(s.e, http.MethodGet, target, nil)
	authenticate(c, s.userID)
	return c, rec
}

func (s *DashboardHandlerSuite) TestGetBalance() {
	s.dashboardService.EXPECT().
		GetBalance(gomock.Any(), s.userID).
		Return(&models.BalanceSummary{
			TotalIncome:    decimal.RequireFromString("1500.00"),
			TotalExpense:   decimal.RequireFromString("250.25"),
			CurrentBalance: decimal.RequireFromString("1249.75"),
		}, nil)

	c, rec := s.get("/api/transactions/dashboard/balance")

	s.NoError(s.handler.GetBalance(c))
	s.Equal(http.StatusOK, rec.Code)

	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("1500", body["totalIncome"])
	s.Equal("250.25", body["totalExpense"])
	s.Equal("1249.75", body["currentBalance"])
	s.NotContains(body, "data")
}

func (s *DashboardHandlerSuite) TestGetBalance_Errors() {
	testCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"orphaned category", services.ErrCategoryIntegrity, http.StatusInternalServerError, "SYSTEM_001"},
		{"repository failure", context.DeadlineExceeded, http.StatusInternalServerError, "SYSTEM_001"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.dashboardService.EXPECT().GetBalance(gomock.Any(), s.userID).Return(nil, tc.err)

			c, rec := s.get("/api/transactions/dashboard/balance")

			s.NoError(s.handler.GetBalance(c))
			s.Equal(tc.status, rec.Code)
			s.Equal(tc.code, decodeErrorCode(rec))
		})
	}
}

func (s *DashboardHandlerSuite) TestGetBalance_Unauthenticated() {
	c, rec := newJSONContext(s.e, http.MethodGet, "/api/transactions/dashboard/balance", nil)

	s.NoError(s.handler.GetBalance(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *DashboardHandlerSuite) TestGetMonthlySummary() {
	summary := make([]models.MonthlySummary, 12)
	for i, month := range []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"} {
		summary[i] = models.MonthlySummary{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
	}

	s.Run("default year", func() {
		s.dashboardService.EXPECT().GetMonthlySummary(gomock.Any(), s.userID, 0).Return(summary, nil)

		c, rec := s.get("/api/transactions/dashboard/monthly-summary")

		s.NoError(s.handler.GetMonthlySummary(c))
		s.Equal(http.StatusOK, rec.Code)

		var body []map[string]interface{}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Len(body, 12)
		s.Equal("Jan", body[0]["month"])
		s.Equal("Dec", body[11]["month"])
	})

	s.Run("explicit year", func() {
		s.dashboardService.EXPECT().GetMonthlySummary(gomock.Any(), s.userID, 2023).Return(summary, nil)

		c, rec := s.get("/api/transactions/dashboard/monthly-summary?year=2023")

		s.NoError(s.handler.GetMonthlySummary(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	for _, year := range []string{"abc", "1200", "10000"} {
		s.Run("invalid year "+year, func() {
			c, rec := s.get("/api/transactions/dashboard/monthly-summary?year=" + year)

			s.NoError(s.handler.GetMonthlySummary(c))
			s.Equal(http.StatusBadRequest, rec.Code)
			s.Equal("DASHBOARD_003", decodeErrorCode(rec))
		})
	}
}

func (s *DashboardHandlerSuite) TestGetRecentTransactions() {
	category := &models.Category{ID: uuid.New(), Name: "Salary", Type: models.TransactionTypeIncome}
	transactions := []models.Transaction{
		{
			ID:              uuid.New(),
			UserID:          s.userID,
			CategoryID:      category.ID,
			Category:        category,
			Type:            models.TransactionTypeIncome,
			Amount:          decimal.RequireFromString("3000.00"),
			Description:     gofakeit.Company(),
			TransactionDate: models.NewDate(2024, 5, 31),
		},
	}

	s.Run("default limit", func() {
		s.dashboardService.EXPECT().
			GetRecentTransactions(gomock.Any(), s.userID, analytics.DefaultRecentLimit).
			Return(transactions, nil)

		c, rec := s.get("/api/transactions/dashboard/recent")

		s.NoError(s.handler.GetRecentTransactions(c))
		s.Equal(http.StatusOK, rec.Code)

		var body []dto.TransactionResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Require().Len(body, 1)
		s.Equal("Salary", body[0].CategoryName)
		s.Equal("2024-05-31", body[0].TransactionDate.String())
	})

	s.Run("explicit limit", func() {
		s.dashboardService.EXPECT().
			GetRecentTransactions(gomock.Any(), s.userID, 100).
			Return([]models.Transaction{}, nil)

		c, rec := s.get("/api/transactions/dashboard/recent?limit=100")

		s.NoError(s.handler.GetRecentTransactions(c))
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("[]", trimBody(rec))
	})

	for _, limit := range []string{"0", "-1", "101", "five"} {
		s.Run("invalid limit "+limit, func() {
			c, rec := s.get("/api/transactions/dashboard/recent?limit=" + limit)

			s.NoError(s.handler.GetRecentTransactions(c))
			s.Equal(http.StatusBadRequest, rec.Code)
			s.Equal("DASHBOARD_002", decodeErrorCode(rec))
		})
	}
}

func (s *DashboardHandlerSuite) TestGetSpendingCategories() {
	breakdown := &models.SpendingBreakdown{
		TotalSpending: decimal.RequireFromString("100.00"),
		Categories: []models.CategorySpending{
			{Label: "Food", Value: 75, Color: analytics.CategoryColor(0), Amount: decimal.RequireFromString("75.00")},
			{Label: "Transport", Value: 25, Color: analytics.CategoryColor(1), Amount: decimal.RequireFromString("25.00")},
		},
	}

	s.Run("all time", func() {
		s.dashboardService.EXPECT().
			GetSpendingByCategory(gomock.Any(), s.userID, (*analytics.DateRange)(nil)).
			Return(breakdown, nil)

		c, rec := s.get("/api/transactions/dashboard/spending-categories")

		s.NoError(s.handler.GetSpendingCategories(c))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"label":"Food"`)
		s.Contains(rec.Body.String(), `"color":"#42A5F5"`)
	})

	s.Run("windowed", func() {
		s.dashboardService.EXPECT().
			GetSpendingByCategory(gomock.Any(), s.userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, window *analytics.DateRange) (*models.SpendingBreakdown, error) {
				s.Require().NotNil(window)
				s.Equal("2024-01-01", window.Start.String())
				s.Equal("2024-01-31", window.End.String())
				return breakdown, nil
			})

		c, rec := s.get("/api/transactions/dashboard/spending-categories?startDate=2024-01-01&endDate=2024-01-31")

		s.NoError(s.handler.GetSpendingCategories(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("one bound only", func() {
		c, rec := s.get("/api/transactions/dashboard/spending-categories?startDate=2024-01-01")

		s.NoError(s.handler.GetSpendingCategories(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "endDate")
	})

	s.Run("inverted window", func() {
		s.dashboardService.EXPECT().
			GetSpendingByCategory(gomock.Any(), s.userID, gomock.Any()).
			Return(nil, services.ErrInvalidDateRange)

		c, rec := s.get("/api/transactions/dashboard/spending-categories?startDate=2024-02-01&endDate=2024-01-01")

		s.NoError(s.handler.GetSpendingCategories(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("DASHBOARD_001", decodeErrorCode(rec))
	})
}

func (s *DashboardHandlerSuite) TestGetFinancialTrends() {
	s.Run("window", func() {
		s.dashboardService.EXPECT().
			GetFinancialTrends(gomock.Any(), s.userID, analytics.DateRange{
				Start: models.NewDate(2024, 1, 1),
				End:   models.NewDate(2024, 12, 31),
			}).
			Return([]models.TrendPoint{
				{Month: 0, Balance: decimal.RequireFromString("1000")},
				{Month: 1, Balance: decimal.RequireFromString("750.5")},
			}, nil)

		c, rec := s.get("/api/transactions/dashboard/financial-trends?startDate=2024-01-01&endDate=2024-12-31")

		s.NoError(s.handler.GetFinancialTrends(c))
		s.Equal(http.StatusOK, rec.Code)

		var body []map[string]interface{}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Require().Len(body, 2)
		s.Equal(float64(0), body[0]["month"])
		s.Equal("750.5", body[1]["balance"])
	})

	s.Run("dates required", func() {
		c, rec := s.get("/api/transactions/dashboard/financial-trends?startDate=2024-01-01")

		s.NoError(s.handler.GetFinancialTrends(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "endDate: is required")
	})

	s.Run("impossible date", func() {
		c, rec := s.get("/api/transactions/dashboard/financial-trends?startDate=2023-02-29&endDate=2023-03-31")

		s.NoError(s.handler.GetFinancialTrends(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "startDate: must be a date in YYYY-MM-DD format")
	})

	s.Run("inverted window", func() {
		s.dashboardService.EXPECT().
			GetFinancialTrends(gomock.Any(), s.userID, gomock.Any()).
			Return(nil, services.ErrInvalidDateRange)

		c, rec := s.get("/api/transactions/dashboard/financial-trends?startDate=2024-12-31&endDate=2024-01-01")

		s.NoError(s.handler.GetFinancialTrends(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("DASHBOARD_001", decodeErrorCode(rec))
	})
}

func trimBody(rec *httptest.ResponseRecorder) string {
	return strings.TrimSpace(rec.Body.String())
}
