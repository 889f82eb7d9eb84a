package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_Validate(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name     string
		category Category
		errMsg   string
	}{
		{
			name:     "user category",
			category: Category{UserID: &owner, Name: "Coffee", Type: TransactionTypeExpense},
		},
		{
			name:     "default category",
			category: Category{Name: "Salary", Type: TransactionTypeIncome, IsDefault: true},
		},
		{
			name:     "blank name",
			category: Category{UserID: &owner, Name: "   ", Type: TransactionTypeExpense},
			errMsg:   "category name is required",
		},
		{
			name:     "invalid type",
			category: Category{UserID: &owner, Name: "Coffee", Type: "BOTH"},
			errMsg:   "invalid transaction type",
		},
		{
			name:     "default with owner",
			category: Category{UserID: &owner, Name: "Coffee", Type: TransactionTypeExpense, IsDefault: true},
			errMsg:   "default categories cannot have an owner",
		},
		{
			name:     "user category without owner",
			category: Category{Name: "Coffee", Type: TransactionTypeExpense},
			errMsg:   "user categories require an owner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCategory_Visibility(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	owned := Category{UserID: &owner, Name: "Coffee", Type: TransactionTypeExpense}
	assert.True(t, owned.IsOwnedBy(owner))
	assert.True(t, owned.IsVisibleTo(owner))
	assert.False(t, owned.IsOwnedBy(stranger))
	assert.False(t, owned.IsVisibleTo(stranger))

	shared := Category{Name: "Food", Type: TransactionTypeExpense, IsDefault: true}
	assert.False(t, shared.IsOwnedBy(owner))
	assert.True(t, shared.IsVisibleTo(stranger))
}

func TestDefaultCategories(t *testing.T) {
	categories := DefaultCategories()
	require.NotEmpty(t, categories)

	names := make(map[string]bool, len(categories))
	for _, category := range categories {
		assert.True(t, category.IsDefault, category.Name)
		assert.Nil(t, category.UserID, category.Name)
		assert.NoError(t, category.Validate(), category.Name)
		assert.False(t, names[category.Name], "duplicate %s", category.Name)
		names[category.Name] = true
	}
	assert.True(t, names["Salary"])
	assert.True(t, names["Food"])
}
