package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"finance-assistant/internal/database"
	"finance-assistant/internal/dto"
	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// RecurringScheduleTestSuite runs the transaction service and the recurring processor
// against one sqlite database to check how edits interact with generated occurrences.
type RecurringScheduleTestSuite struct {
	suite.Suite
	db           *database.DB
	transactions TransactionServiceInterface
	processor    RecurringProcessorInterface
	user         *models.User
	category     *models.Category
	ctx          context.Context
}

func (s *RecurringScheduleTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.user = database.CreateTestUser(s.T(), s.db, "schedule.owner@example.com")
	s.category = database.CreateTestCategory(s.T(), s.db, s.user, "Rent", models.TransactionTypeExpense)

	transactionRepo := repositories.NewTransactionRepository(s.db.DB)
	metrics := NewPrometheusMetrics(prometheus.NewRegistry())
	s.transactions = NewTransactionService(transactionRepo, repositories.NewCategoryRepository(s.db.DB), nil, metrics, slog.Default())
	s.processor = NewRecurringProcessor(transactionRepo, nil, metrics, slog.Default(), 0)
	s.ctx = context.Background()
}

func (s *RecurringScheduleTestSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestRecurringScheduleSuite(t *testing.T) {
	suite.Run(t, new(RecurringScheduleTestSuite))
}

func (s *RecurringScheduleTestSuite) monthlyRent(on models.Date, amount string) *dto.CreateTransactionRequest {
	return &dto.CreateTransactionRequest{
		CategoryID:      s.category.ID,
		Type:            string(models.TransactionTypeExpense),
		Amount:          decimal.RequireFromString(amount),
		Description:     "Rent",
		TransactionDate: on,
		IsRecurring:     true,
		Frequency:       string(models.FrequencyMonthly),
	}
}

func (s *RecurringScheduleTestSuite) occurrenceDates() []string {
	var rows []models.Transaction
	s.Require().NoError(s.db.Where("user_id = ? AND is_recurring = ?", s.user.ID, false).
		Order("transaction_date ASC").Find(&rows).Error)

	dates := make([]string, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, row.TransactionDate.String())
	}
	return dates
}

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
}

func (s *RecurringScheduleTestSuite) TestEditingAmountDoesNotReplayOccurrences() {
	template, err := s.transactions.CreateTransaction(s.ctx, s.user.ID, s.monthlyRent(models.NewDate(2024, 3, 15), "950.00"))
	s.Require().NoError(err)

	count, err := s.processor.ProcessDue(s.ctx, at(2024, time.June, 20))
	s.Require().NoError(err)
	s.Equal(3, count)
	s.Equal([]string{"2024-04-15", "2024-05-15", "2024-06-15"}, s.occurrenceDates())

	updated, err := s.transactions.UpdateTransaction(s.ctx, s.user.ID, template.ID, s.monthlyRent(models.NewDate(2024, 3, 15), "990.00"))
	s.Require().NoError(err)
	s.Equal("2024-07-15", updated.NextExecutionDate.String())

	count, err = s.processor.ProcessDue(s.ctx, at(2024, time.June, 21))
	s.Require().NoError(err)
	s.Zero(count)

	count, err = s.processor.ProcessDue(s.ctx, at(2024, time.July, 15))
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Equal([]string{"2024-04-15", "2024-05-15", "2024-06-15", "2024-07-15"}, s.occurrenceDates())
}

func (s *RecurringScheduleTestSuite) TestMovingTheDateRestartsTheSchedule() {
	template, err := s.transactions.CreateTransaction(s.ctx, s.user.ID, s.monthlyRent(models.NewDate(2024, 3, 15), "950.00"))
	s.Require().NoError(err)

	_, err = s.processor.ProcessDue(s.ctx, at(2024, time.April, 20))
	s.Require().NoError(err)

	updated, err := s.transactions.UpdateTransaction(s.ctx, s.user.ID, template.ID, s.monthlyRent(models.NewDate(2024, 4, 1), "950.00"))
	s.Require().NoError(err)
	s.Equal("2024-05-01", updated.NextExecutionDate.String())
	s.True(updated.IsActive)
}

func (s *RecurringScheduleTestSuite) TestFinishedScheduleStaysInactiveAfterEdit() {
	req := s.monthlyRent(models.NewDate(2024, 3, 15), "950.00")
	end := models.NewDate(2024, 4, 30)
	req.EndDate = &end
	template, err := s.transactions.CreateTransaction(s.ctx, s.user.ID, req)
	s.Require().NoError(err)

	_, err = s.processor.ProcessDue(s.ctx, at(2024, time.June, 1))
	s.Require().NoError(err)
	s.Equal([]string{"2024-04-15"}, s.occurrenceDates())

	req.Description = "Rent (old flat)"
	updated, err := s.transactions.UpdateTransaction(s.ctx, s.user.ID, template.ID, req)
	s.Require().NoError(err)
	s.False(updated.IsActive)
	s.Equal("2024-05-15", updated.NextExecutionDate.String())

	count, err := s.processor.ProcessDue(s.ctx, at(2024, time.August, 1))
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *RecurringScheduleTestSuite) TestMonthEndScheduleStaysOnMonthEnd() {
	_, err := s.transactions.CreateTransaction(s.ctx, s.user.ID, s.monthlyRent(models.NewDate(2024, 1, 31), "950.00"))
	s.Require().NoError(err)

	count, err := s.processor.ProcessDue(s.ctx, at(2024, time.May, 31))
	s.Require().NoError(err)
	s.Equal(4, count)
	s.Equal([]string{"2024-02-29", "2024-03-31", "2024-04-30", "2024-05-31"}, s.occurrenceDates())
}
