package events

import (
	"context"
	"encoding/json"
	"time"

	"finance-assistant/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
)

// TransactionEvent announces a change to a user's transactions.
type TransactionEvent struct {
	Type            EventType              `json:"type"`
	TransactionID   uuid.UUID              `json:"transactionId"`
	UserID          uuid.UUID              `json:"userId"`
	CategoryID      uuid.UUID              `json:"categoryId"`
	TransactionType models.TransactionType `json:"transactionType"`
	Amount          decimal.Decimal        `json:"amount"`
	TransactionDate models.Date            `json:"transactionDate"`
	OccurredAt      time.Time              `json:"occurredAt"`
}

// NewTransactionEvent snapshots txn for the given event type.
func NewTransactionEvent(eventType EventType, txn *models.Transaction) TransactionEvent {
	return TransactionEvent{
		Type:            eventType,
		TransactionID:   txn.ID,
		UserID:          txn.UserID,
		CategoryID:      txn.CategoryID,
		TransactionType: txn.Type,
		Amount:          txn.Amount,
		TransactionDate: txn.TransactionDate,
		OccurredAt:      time.Now().UTC(),
	}
}

// RoutingKey is the topic the event is published under.
func (e TransactionEvent) RoutingKey() string {
	return string(e.Type)
}

func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var event TransactionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Publisher delivers transaction events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event TransactionEvent) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func NewNopPublisher() Publisher {
	return NopPublisher{}
}

func (NopPublisher) Publish(ctx context.Context, event TransactionEvent) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
