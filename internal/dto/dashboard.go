package dto

// SpendingCategoriesQuery is an optional inclusive date window. Both bounds or neither.
type SpendingCategoriesQuery struct {
	StartDate string `query:"startDate" validate:"required_with=EndDate,omitempty,iso_date"`
	EndDate   string `query:"endDate" validate:"required_with=StartDate,omitempty,iso_date"`
}

// FinancialTrendsQuery is the mandatory inclusive date window for balance trends
type FinancialTrendsQuery struct {
	StartDate string `query:"startDate" validate:"required,iso_date"`
	EndDate   string `query:"endDate" validate:"required,iso_date"`
}
