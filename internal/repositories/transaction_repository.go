package repositories

import (
	"errors"
	"fmt"

	"finance-assistant/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrOrphanedCategory    = errors.New("transaction references a missing category")
)

// snapshotOrder fixes the row order handed to aggregation so that ties resolve the same way on every call.
const snapshotOrder = "transaction_date ASC, created_at ASC, id ASC"

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

func (r *transactionRepository) Create(transaction *models.Transaction) error {
	if transaction == nil {
		return errors.New("transaction cannot be nil")
	}

	if err := r.db.Omit(clause.Associations).Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByIDForUser loads a transaction with its category. Rows owned by someone else are reported as not found.
func (r *transactionRepository) GetByIDForUser(id, userID uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction

	err := r.db.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &transaction, nil
}

// List returns the user's transactions matching filters, newest first.
func (r *transactionRepository) List(filters models.TransactionFilters) ([]models.Transaction, error) {
	var transactions []models.Transaction

	query := r.db.Model(&models.Transaction{}).
		Preload("Category").
		Where("user_id = ?", filters.UserID)

	if filters.StartDate != nil {
		query = query.Where("transaction_date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("transaction_date <= ?", *filters.EndDate)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	if err := query.Order("transaction_date DESC, created_at DESC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

func (r *transactionRepository) Update(transaction *models.Transaction) error {
	if transaction == nil {
		return errors.New("transaction cannot be nil")
	}

	result := r.db.Omit(clause.Associations).Save(transaction)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

func (r *transactionRepository) Delete(id, userID uuid.UUID) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// GetAllByUserID returns a consistent snapshot of every transaction the user owns.
func (r *transactionRepository) GetAllByUserID(userID uuid.UUID) ([]models.Transaction, error) {
	return r.snapshot(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ?", userID)
	})
}

// GetByUserIDAndDateRange returns the user's transactions dated within [startDate, endDate].
func (r *transactionRepository) GetByUserIDAndDateRange(userID uuid.UUID, startDate, endDate models.Date) ([]models.Transaction, error) {
	return r.snapshot(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ? AND transaction_date >= ? AND transaction_date <= ?", userID, startDate, endDate)
	})
}

// snapshot reads the rows and their categories inside one database transaction.
func (r *transactionRepository) snapshot(scope func(*gorm.DB) *gorm.DB) ([]models.Transaction, error) {
	var transactions []models.Transaction

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Scopes(scope).
			Preload("Category").
			Order(snapshotOrder).
			Find(&transactions).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	for i := range transactions {
		if transactions[i].Category == nil {
			return nil, fmt.Errorf("%w: transaction %s, category %s",
				ErrOrphanedCategory, transactions[i].ID, transactions[i].CategoryID)
		}
	}

	return transactions, nil
}

func (r *transactionRepository) CountByCategoryID(categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions for category: %w", err)
	}
	return count, nil
}

// GetDueRecurring returns active recurring templates whose next execution is on or before asOf.
func (r *transactionRepository) GetDueRecurring(asOf models.Date, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction

	query := r.db.Where("is_recurring = ? AND is_active = ? AND next_execution_date IS NOT NULL AND next_execution_date <= ?",
		true, true, asOf).
		Order("next_execution_date ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get due recurring transactions: %w", err)
	}

	return transactions, nil
}

// SaveOccurrences inserts the materialised occurrences and persists the template's advanced
// schedule in one database transaction.
func (r *transactionRepository) SaveOccurrences(template *models.Transaction, occurrences []*models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, occurrence := range occurrences {
			if err := tx.Omit(clause.Associations).Create(occurrence).Error; err != nil {
				return fmt.Errorf("failed to create recurring occurrence: %w", err)
			}
		}

		result := tx.Model(&models.Transaction{}).
			Where("id = ?", template.ID).
			Updates(map[string]interface{}{
				"next_execution_date": template.NextExecutionDate,
				"is_active":           template.IsActive,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to advance recurring schedule: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTransactionNotFound
		}

		return nil
	})
}
