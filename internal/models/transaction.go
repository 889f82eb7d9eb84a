package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// MinTransactionAmount is the smallest amount a transaction may carry.
var MinTransactionAmount = decimal.New(1, -2)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidFrequency       = errors.New("invalid recurrence frequency")
	ErrInvalidAmount          = errors.New("transaction amount must be at least 0.01")
	ErrTransactionDateMissing = errors.New("transaction date is required")
	ErrFrequencyRequired      = errors.New("frequency is required for recurring transactions")
)

// Transaction is a single income or expense entry owned by a user.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"userId"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"categoryId"`
	Type            TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	Location        string          `gorm:"type:varchar(255)" json:"location,omitempty"`
	TransactionDate Date            `gorm:"type:date;not null;index" json:"transactionDate"`

	IsRecurring       bool      `gorm:"not null" json:"isRecurring"`
	Frequency         Frequency `gorm:"type:varchar(10)" json:"frequency,omitempty"`
	EndDate           *Date     `gorm:"type:date" json:"endDate,omitempty"`
	NextExecutionDate *Date     `gorm:"type:date;index" json:"nextExecutionDate,omitempty"`
	IsActive          bool      `gorm:"not null" json:"isActive"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	if isMapUpdate(tx) {
		return nil
	}

	t.UpdatedAt = time.Now()
	return t.Validate()
}

func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if t.CategoryID == uuid.Nil {
		return errors.New("category ID is required")
	}

	if !IsValidTransactionType(t.Type) {
		return ErrInvalidTransactionType
	}

	if t.Amount.LessThan(MinTransactionAmount) {
		return ErrInvalidAmount
	}

	if t.TransactionDate.IsZero() {
		return ErrTransactionDateMissing
	}

	if t.IsRecurring {
		if t.Frequency == "" {
			return ErrFrequencyRequired
		}
		if !IsValidFrequency(t.Frequency) {
			return ErrInvalidFrequency
		}
	}

	return nil
}

// ApplyRecurringDefaults seeds the schedule of a newly created recurring transaction.
func (t *Transaction) ApplyRecurringDefaults() {
	if !t.IsRecurring {
		t.Frequency = ""
		t.NextExecutionDate = nil
		t.EndDate = nil
		t.IsActive = false
		return
	}

	// the template itself is the first occurrence
	if t.NextExecutionDate == nil {
		next := t.NextOccurrence(t.TransactionDate)
		t.NextExecutionDate = &next
	}
	t.IsActive = true
}

// NextOccurrence returns the scheduled date following from. Monthly and yearly dates that sit
// on the schedule are counted from TransactionDate, so a 31st stays on the last day of each month.
func (t *Transaction) NextOccurrence(from Date) Date {
	var step int
	switch t.Frequency {
	case FrequencyMonthly:
		step = 1
	case FrequencyYearly:
		step = 12
	default:
		return t.Frequency.Advance(from)
	}

	anchor := t.TransactionDate
	anchorYear, anchorMonth, _ := anchor.Date()
	fromYear, fromMonth, _ := from.Date()
	months := (fromYear-anchorYear)*12 + int(fromMonth-anchorMonth)
	if anchor.IsZero() || months < 0 || months%step != 0 || !anchor.AddMonths(months).Equal(from) {
		return t.Frequency.Advance(from)
	}
	return anchor.AddMonths(months + step)
}

func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}

// SignedAmount is the amount with the balance sign applied: positive for income, negative for expenses.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.IsExpense() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// CategoryName returns the preloaded category name, or "" if the association was not loaded.
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// IsDue reports whether a recurring transaction should fire on or before today.
func (t *Transaction) IsDue(today Date) bool {
	if !t.IsRecurring || !t.IsActive || t.NextExecutionDate == nil {
		return false
	}
	return !t.NextExecutionDate.After(today)
}

// Advance returns the execution date that follows from according to the frequency.
func (f Frequency) Advance(from Date) Date {
	switch f {
	case FrequencyDaily:
		return from.AddDays(1)
	case FrequencyWeekly:
		return from.AddDays(7)
	case FrequencyMonthly:
		return from.AddMonths(1)
	case FrequencyYearly:
		return from.AddYears(1)
	default:
		return from
	}
}

// Occurrence builds the one-off transaction materialised from a recurring template on the given date.
func (t *Transaction) Occurrence(on Date) *Transaction {
	return &Transaction{
		UserID:          t.UserID,
		CategoryID:      t.CategoryID,
		Type:            t.Type,
		Amount:          t.Amount,
		Description:     t.Description,
		Location:        t.Location,
		TransactionDate: on,
	}
}

func (t *Transaction) TableName() string {
	return "transactions"
}

func IsValidTransactionType(transactionType TransactionType) bool {
	switch transactionType {
	case TransactionTypeIncome, TransactionTypeExpense:
		return true
	default:
		return false
	}
}

func IsValidFrequency(frequency Frequency) bool {
	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}
