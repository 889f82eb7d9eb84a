package models

import "github.com/google/uuid"

// TransactionFilters narrows a user's transaction listing. Zero values mean "no filter".
type TransactionFilters struct {
	UserID     uuid.UUID
	StartDate  *Date
	EndDate    *Date
	CategoryID *uuid.UUID
	Type       TransactionType
	Offset     int
	Limit      int
}
