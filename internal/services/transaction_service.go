package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"finance-assistant/internal/dto"
	"finance-assistant/internal/events"
	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"

	"github.com/google/uuid"
)

const (
	DefaultTransactionLimit = 50
	MaxTransactionLimit     = 100
)

var (
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrCategoryTypeMismatch   = errors.New("transaction type does not match the category type")
	ErrInvalidTransaction     = errors.New("invalid transaction")
	ErrFrequencyRequired      = errors.New("frequency is required for recurring transactions")
	ErrInvalidSchedule        = errors.New("recurring schedule dates may not precede the transaction date")
	ErrInvalidAmountPrecision = errors.New("amount must have at most 2 decimal places")
)

// TransactionService records income and expenses and announces every change
type TransactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	categoryRepo    repositories.CategoryRepositoryInterface
	publisher       events.Publisher
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

func NewTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	publisher events.Publisher,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) TransactionServiceInterface {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		publisher:       publisher,
		metrics:         metrics,
		logger:          logger,
	}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*models.Transaction, error) {
	txn := &models.Transaction{UserID: userID}
	if err := s.applyRequest(txn, req); err != nil {
		return nil, err
	}
	txn.ApplyRecurringDefaults()

	if err := s.transactionRepo.Create(txn); err != nil {
		return nil, mapTransactionWriteError(err)
	}

	s.logger.InfoContext(ctx, "transaction created",
		"transaction_id", txn.ID,
		"user_id", userID,
		"type", txn.Type,
		"recurring", txn.IsRecurring)
	s.afterWrite(ctx, events.TransactionCreated, txn)

	return txn, nil
}

// GetTransaction returns one of the user's transactions. Other users' transactions are reported as not found.
func (s *TransactionService) GetTransaction(userID, transactionID uuid.UUID) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetByIDForUser(transactionID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions returns the user's transactions, newest first
func (s *TransactionService) ListTransactions(filters models.TransactionFilters) ([]models.Transaction, error) {
	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
		return nil, ErrInvalidDateRange
	}
	if filters.Type != "" && !models.IsValidTransactionType(filters.Type) {
		return nil, ErrInvalidCategoryType
	}

	if filters.Offset < 0 {
		filters.Offset = 0
	}
	if filters.Limit <= 0 {
		filters.Limit = DefaultTransactionLimit
	}
	if filters.Limit > MaxTransactionLimit {
		filters.Limit = MaxTransactionLimit
	}

	transactions, err := s.transactionRepo.List(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// UpdateTransaction replaces the editable fields of one of the user's transactions.
// The recurring schedule restarts when the frequency or transaction date changes or
// an explicit nextExecutionDate is given. A changed end date may reactivate it.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, req *dto.UpdateTransactionRequest) (*models.Transaction, error) {
	txn, err := s.GetTransaction(userID, transactionID)
	if err != nil {
		return nil, err
	}

	previous := *txn

	if err := s.applyRequest(txn, req); err != nil {
		return nil, err
	}

	// an edit that leaves the schedule alone keeps its progress and its active flag
	keepSchedule := req.NextExecutionDate == nil && previous.IsRecurring && txn.IsRecurring &&
		txn.Frequency == previous.Frequency && txn.TransactionDate.Equal(previous.TransactionDate)
	if keepSchedule {
		txn.NextExecutionDate = previous.NextExecutionDate
	}
	txn.ApplyRecurringDefaults()
	if keepSchedule && sameOptionalDate(txn.EndDate, previous.EndDate) {
		txn.IsActive = previous.IsActive
	}

	if err := s.transactionRepo.Update(txn); err != nil {
		return nil, mapTransactionWriteError(err)
	}

	s.logger.InfoContext(ctx, "transaction updated",
		"transaction_id", txn.ID,
		"user_id", userID)
	s.afterWrite(ctx, events.TransactionUpdated, txn)

	return txn, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	txn, err := s.GetTransaction(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.Delete(transactionID, userID); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction deleted",
		"transaction_id", transactionID,
		"user_id", userID)
	s.afterWrite(ctx, events.TransactionDeleted, txn)

	return nil
}

// applyRequest copies req onto txn after checking the category and schedule
func (s *TransactionService) applyRequest(txn *models.Transaction, req *dto.CreateTransactionRequest) error {
	transactionType := models.TransactionType(strings.ToUpper(req.Type))
	if !models.IsValidTransactionType(transactionType) {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, models.ErrInvalidTransactionType)
	}

	if req.Amount.LessThan(models.MinTransactionAmount) {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, models.ErrInvalidAmount)
	}
	if !req.Amount.Equal(req.Amount.Round(2)) {
		return ErrInvalidAmountPrecision
	}

	if req.TransactionDate.IsZero() {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, models.ErrTransactionDateMissing)
	}

	category, err := s.categoryRepo.GetByID(req.CategoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}
	if !category.IsVisibleTo(txn.UserID) {
		return ErrCategoryNotFound
	}
	if category.Type != transactionType {
		return ErrCategoryTypeMismatch
	}

	txn.CategoryID = category.ID
	txn.Category = category
	txn.Type = transactionType
	txn.Amount = req.Amount
	txn.Description = strings.TrimSpace(req.Description)
	txn.Location = strings.TrimSpace(req.Location)
	txn.TransactionDate = req.TransactionDate
	txn.IsRecurring = req.IsRecurring
	txn.Frequency = models.Frequency(strings.ToUpper(req.Frequency))
	txn.EndDate = req.EndDate
	txn.NextExecutionDate = req.NextExecutionDate

	if !txn.IsRecurring {
		return nil
	}

	if txn.Frequency == "" {
		return ErrFrequencyRequired
	}
	if !models.IsValidFrequency(txn.Frequency) {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, models.ErrInvalidFrequency)
	}
	if txn.EndDate != nil && txn.EndDate.Before(txn.TransactionDate) {
		return ErrInvalidSchedule
	}
	if txn.NextExecutionDate != nil && txn.NextExecutionDate.Before(txn.TransactionDate) {
		return ErrInvalidSchedule
	}

	return nil
}

func sameOptionalDate(a, b *models.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// afterWrite publishes the change event. Publishing failures never fail the request.
func (s *TransactionService) afterWrite(ctx context.Context, eventType events.EventType, txn *models.Transaction) {
	if s.metrics != nil {
		s.metrics.IncrementCounter(MetricTransactionChange, map[string]string{"operation": string(eventType)})
	}

	if err := s.publisher.Publish(ctx, events.NewTransactionEvent(eventType, txn)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish transaction event",
			"error", err,
			"event", eventType,
			"transaction_id", txn.ID)
		if s.metrics != nil {
			s.metrics.IncrementCounter(MetricEventPublishFailed, nil)
		}
	}
}

func mapTransactionWriteError(err error) error {
	for _, modelErr := range []error{
		models.ErrInvalidTransactionType, models.ErrInvalidFrequency, models.ErrInvalidAmount,
		models.ErrTransactionDateMissing, models.ErrFrequencyRequired,
	} {
		if errors.Is(err, modelErr) {
			return fmt.Errorf("%w: %v", ErrInvalidTransaction, modelErr)
		}
	}
	if errors.Is(err, repositories.ErrTransactionNotFound) {
		return ErrTransactionNotFound
	}
	return fmt.Errorf("failed to save transaction: %w", err)
}
