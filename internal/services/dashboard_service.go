package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finance-assistant/internal/analytics"
	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidDateRange  = errors.New("start date must not be after end date")
	ErrCategoryIntegrity = errors.New("transaction references a missing category")
)

const (
	viewBalance         = "balance"
	viewMonthlySummary  = "monthly_summary"
	viewRecent          = "recent"
	viewSpending        = "spending_categories"
	viewFinancialTrends = "financial_trends"
)

// DashboardService loads a consistent snapshot of a user's transactions and hands it to the
// analytics package. It never caches; every call reads fresh data.
type DashboardService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
	now             func() time.Time
}

func NewDashboardService(
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) DashboardServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		transactionRepo: transactionRepo,
		metrics:         metrics,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *DashboardService) GetBalance(ctx context.Context, userID uuid.UUID) (result *models.BalanceSummary, err error) {
	defer s.observe(viewBalance, time.Now(), &err)

	txns, err := s.snapshot(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	balance := analytics.Balance(txns)
	return &balance, nil
}

// GetMonthlySummary returns the twelve months of year. A zero year means the current one.
func (s *DashboardService) GetMonthlySummary(ctx context.Context, userID uuid.UUID, year int) (result []models.MonthlySummary, err error) {
	defer s.observe(viewMonthlySummary, time.Now(), &err)

	if year == 0 {
		year = s.now().Year()
	}

	window := analytics.DateRange{
		Start: models.NewDate(year, time.January, 1),
		End:   models.NewDate(year, time.December, 31),
	}
	txns, err := s.snapshot(ctx, userID, &window)
	if err != nil {
		return nil, err
	}

	return analytics.MonthlySummary(txns, year), nil
}

func (s *DashboardService) GetRecentTransactions(ctx context.Context, userID uuid.UUID, limit int) (result []models.Transaction, err error) {
	defer s.observe(viewRecent, time.Now(), &err)

	if limit <= 0 {
		return []models.Transaction{}, nil
	}

	txns, err := s.snapshot(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	return analytics.RecentTransactions(txns, limit), nil
}

// GetSpendingByCategory breaks down expenses by category. A nil window covers all time.
func (s *DashboardService) GetSpendingByCategory(ctx context.Context, userID uuid.UUID, window *analytics.DateRange) (result *models.SpendingBreakdown, err error) {
	defer s.observe(viewSpending, time.Now(), &err)

	if window != nil && window.IsEmpty() {
		return nil, ErrInvalidDateRange
	}

	txns, err := s.snapshot(ctx, userID, window)
	if err != nil {
		return nil, err
	}

	breakdown := analytics.SpendingByCategory(txns, window)
	return &breakdown, nil
}

// GetFinancialTrends returns the running balance per month inside window. The balance starts at
// zero on window.Start; earlier transactions are not carried in.
func (s *DashboardService) GetFinancialTrends(ctx context.Context, userID uuid.UUID, window analytics.DateRange) (result []models.TrendPoint, err error) {
	defer s.observe(viewFinancialTrends, time.Now(), &err)

	if window.IsEmpty() {
		return nil, ErrInvalidDateRange
	}

	txns, err := s.snapshot(ctx, userID, &window)
	if err != nil {
		return nil, err
	}

	return analytics.FinancialTrends(txns, window), nil
}

// snapshot reads the user's transactions, narrowed to window when it is set.
func (s *DashboardService) snapshot(ctx context.Context, userID uuid.UUID, window *analytics.DateRange) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		txns []models.Transaction
		err  error
	)
	if window != nil {
		txns, err = s.transactionRepo.GetByUserIDAndDateRange(userID, window.Start, window.End)
	} else {
		txns, err = s.transactionRepo.GetAllByUserID(userID)
	}

	if err != nil {
		if errors.Is(err, repositories.ErrOrphanedCategory) {
			s.logger.Error("dashboard snapshot has dangling category reference",
				"user_id", userID,
				"error", err,
			)
			return nil, ErrCategoryIntegrity
		}
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	return txns, nil
}

func (s *DashboardService) observe(view string, start time.Time, err *error) {
	status := "success"
	if *err != nil {
		status = "error"
	}

	s.metrics.IncrementCounter(MetricDashboardRequest, map[string]string{"view": view, "status": status})
	s.metrics.RecordProcessingTime(MetricDashboardDuration+"."+view, time.Since(start))
}
