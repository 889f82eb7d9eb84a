package dto

import (
	"time"

	"finance-assistant/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest contains the data for a new income or expense entry
type CreateTransactionRequest struct {
	CategoryID      uuid.UUID       `json:"categoryId" validate:"required"`
	Type            string          `json:"type" validate:"required,transaction_type"`
	Amount          decimal.Decimal `json:"amount" validate:"required,money"`
	Description     string          `json:"description" validate:"omitempty,max=1000"`
	Location        string          `json:"location" validate:"omitempty,max=255"`
	TransactionDate models.Date     `json:"transactionDate" validate:"required"`
	IsRecurring     bool            `json:"isRecurring"`
	Frequency       string          `json:"frequency" validate:"omitempty,frequency"`
	EndDate         *models.Date    `json:"endDate"`
	// NextExecutionDate overrides the first scheduled occurrence of a recurring transaction
	NextExecutionDate *models.Date `json:"nextExecutionDate"`
}

// UpdateTransactionRequest replaces the editable fields of a transaction
type UpdateTransactionRequest = CreateTransactionRequest

// TransactionFilters contains filtering options for transaction queries
type TransactionFilters struct {
	StartDate  string `query:"startDate" validate:"omitempty,iso_date"`
	EndDate    string `query:"endDate" validate:"omitempty,iso_date"`
	Type       string `query:"type" validate:"omitempty,transaction_type"`
	CategoryID string `query:"categoryId" validate:"omitempty,uuid"`
	Offset     int    `query:"offset" validate:"gte=0"`
	Limit      int    `query:"limit" validate:"gte=0,lte=100"`
}

// TransactionResponse represents a transaction returned to its owner
type TransactionResponse struct {
	ID                uuid.UUID       `json:"id"`
	CategoryID        uuid.UUID       `json:"categoryId"`
	CategoryName      string          `json:"categoryName,omitempty"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description,omitempty"`
	Location          string          `json:"location,omitempty"`
	TransactionDate   models.Date     `json:"transactionDate"`
	IsRecurring       bool            `json:"isRecurring"`
	Frequency         string          `json:"frequency,omitempty"`
	EndDate           *models.Date    `json:"endDate,omitempty"`
	NextExecutionDate *models.Date    `json:"nextExecutionDate,omitempty"`
	IsActive          bool            `json:"isActive"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func NewTransactionResponse(txn *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                txn.ID,
		CategoryID:        txn.CategoryID,
		CategoryName:      txn.CategoryName(),
		Type:              string(txn.Type),
		Amount:            txn.Amount,
		Description:       txn.Description,
		Location:          txn.Location,
		TransactionDate:   txn.TransactionDate,
		IsRecurring:       txn.IsRecurring,
		Frequency:         string(txn.Frequency),
		EndDate:           txn.EndDate,
		NextExecutionDate: txn.NextExecutionDate,
		IsActive:          txn.IsActive,
		CreatedAt:         txn.CreatedAt,
		UpdatedAt:         txn.UpdatedAt,
	}
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Count  int   `json:"count"`
	Total  int64 `json:"total,omitempty"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}
