package repositories

import (
	"errors"
	"testing"

	"finance-assistant/internal/database"
	"finance-assistant/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestTransactionRepository(t *testing.T) {
	suite.Run(t, new(TransactionRepositorySuite))
}

type TransactionRepositorySuite struct {
	suite.Suite
	db      *database.DB
	repo    TransactionRepositoryInterface
	user    *models.User
	food    *models.Category
	salary  *models.Category
	another *models.User
}

func (s *TransactionRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewTransactionRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "owner@example.com")
	s.another = database.CreateTestUser(s.T(), s.db, "other@example.com")
	s.food = database.CreateTestCategory(s.T(), s.db, nil, "Food", models.TransactionTypeExpense)
	s.salary = database.CreateTestCategory(s.T(), s.db, nil, "Salary", models.TransactionTypeIncome)
}

func (s *TransactionRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TransactionRepositorySuite) newTransaction(user *models.User, category *models.Category, amount string, date string) *models.Transaction {
	d, err := models.ParseDate(date)
	s.Require().NoError(err)

	txn := &models.Transaction{
		UserID:          user.ID,
		CategoryID:      category.ID,
		Type:            category.Type,
		Amount:          decimal.RequireFromString(amount),
		TransactionDate: d,
	}
	s.Require().NoError(s.repo.Create(txn))
	return txn
}

func (s *TransactionRepositorySuite) TestCreate_AssignsIDAndTimestamps() {
	txn := s.newTransaction(s.user, s.food, "12.50", "2024-03-01")

	s.NotEqual(uuid.Nil, txn.ID)
	s.NotZero(txn.CreatedAt)
	s.NotZero(txn.UpdatedAt)
}

func (s *TransactionRepositorySuite) TestCreate_RejectsInvalidAmount() {
	txn := &models.Transaction{
		UserID:          s.user.ID,
		CategoryID:      s.food.ID,
		Type:            models.TransactionTypeExpense,
		Amount:          decimal.Zero,
		TransactionDate: models.NewDate(2024, 3, 1),
	}

	err := s.repo.Create(txn)
	s.Error(err)
	s.True(errors.Is(err, models.ErrInvalidAmount))
}

func (s *TransactionRepositorySuite) TestCreate_Nil() {
	s.Error(s.repo.Create(nil))
}

func (s *TransactionRepositorySuite) TestGetByIDForUser() {
	txn := s.newTransaction(s.user, s.food, "10.00", "2024-03-01")

	found, err := s.repo.GetByIDForUser(txn.ID, s.user.ID)
	s.Require().NoError(err)
	s.Equal(txn.ID, found.ID)
	s.True(decimal.RequireFromString("10.00").Equal(found.Amount))
	s.Equal("2024-03-01", found.TransactionDate.String())
	s.Require().NotNil(found.Category)
	s.Equal("Food", found.Category.Name)

	_, err = s.repo.GetByIDForUser(txn.ID, s.another.ID)
	s.Equal(ErrTransactionNotFound, err)

	_, err = s.repo.GetByIDForUser(uuid.New(), s.user.ID)
	s.Equal(ErrTransactionNotFound, err)
}

func (s *TransactionRepositorySuite) TestList_Filters() {
	s.newTransaction(s.user, s.food, "10.00", "2024-01-10")
	s.newTransaction(s.user, s.food, "20.00", "2024-02-10")
	s.newTransaction(s.user, s.salary, "1000.00", "2024-02-15")
	s.newTransaction(s.another, s.food, "99.00", "2024-02-10")

	all, err := s.repo.List(models.TransactionFilters{UserID: s.user.ID})
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("2024-02-15", all[0].TransactionDate.String())

	start := models.NewDate(2024, 2, 1)
	end := models.NewDate(2024, 2, 28)
	february, err := s.repo.List(models.TransactionFilters{UserID: s.user.ID, StartDate: &start, EndDate: &end})
	s.Require().NoError(err)
	s.Len(february, 2)

	expenses, err := s.repo.List(models.TransactionFilters{UserID: s.user.ID, Type: models.TransactionTypeExpense})
	s.Require().NoError(err)
	s.Len(expenses, 2)

	byCategory, err := s.repo.List(models.TransactionFilters{UserID: s.user.ID, CategoryID: &s.salary.ID})
	s.Require().NoError(err)
	s.Len(byCategory, 1)

	paged, err := s.repo.List(models.TransactionFilters{UserID: s.user.ID, Offset: 1, Limit: 1})
	s.Require().NoError(err)
	s.Len(paged, 1)
	s.Equal("2024-02-10", paged[0].TransactionDate.String())
}

func (s *TransactionRepositorySuite) TestUpdate() {
	txn := s.newTransaction(s.user, s.food, "10.00", "2024-01-10")

	txn.Amount = decimal.RequireFromString("15.75")
	txn.Description = "groceries"
	s.Require().NoError(s.repo.Update(txn))

	found, err := s.repo.GetByIDForUser(txn.ID, s.user.ID)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("15.75").Equal(found.Amount))
	s.Equal("groceries", found.Description)
}

func (s *TransactionRepositorySuite) TestDelete_ScopedToOwner() {
	txn := s.newTransaction(s.user, s.food, "10.00", "2024-01-10")

	s.Equal(ErrTransactionNotFound, s.repo.Delete(txn.ID, s.another.ID))
	s.NoError(s.repo.Delete(txn.ID, s.user.ID))
	s.Equal(ErrTransactionNotFound, s.repo.Delete(txn.ID, s.user.ID))
}

func (s *TransactionRepositorySuite) TestGetAllByUserID_SnapshotOrder() {
	late := s.newTransaction(s.user, s.food, "30.00", "2024-03-01")
	early := s.newTransaction(s.user, s.salary, "100.00", "2024-01-01")
	sameDay := s.newTransaction(s.user, s.food, "5.00", "2024-03-01")
	s.newTransaction(s.another, s.food, "1.00", "2024-01-01")

	transactions, err := s.repo.GetAllByUserID(s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(transactions, 3)

	s.Equal(early.ID, transactions[0].ID)
	s.Equal(late.ID, transactions[1].ID)
	s.Equal(sameDay.ID, transactions[2].ID)
	for _, txn := range transactions {
		s.NotNil(txn.Category)
	}
}

func (s *TransactionRepositorySuite) TestGetByUserIDAndDateRange_Inclusive() {
	s.newTransaction(s.user, s.food, "10.00", "2023-12-31")
	s.newTransaction(s.user, s.food, "20.00", "2024-01-01")
	s.newTransaction(s.user, s.food, "30.00", "2024-01-31")
	s.newTransaction(s.user, s.food, "40.00", "2024-02-01")

	transactions, err := s.repo.GetByUserIDAndDateRange(s.user.ID, models.NewDate(2024, 1, 1), models.NewDate(2024, 1, 31))
	s.Require().NoError(err)
	s.Require().Len(transactions, 2)
	s.Equal("2024-01-01", transactions[0].TransactionDate.String())
	s.Equal("2024-01-31", transactions[1].TransactionDate.String())
}

func (s *TransactionRepositorySuite) TestGetAllByUserID_OrphanedCategory() {
	orphan := database.CreateTestCategory(s.T(), s.db, s.user, "Temporary", models.TransactionTypeExpense)
	s.newTransaction(s.user, orphan, "10.00", "2024-01-10")

	s.Require().NoError(s.db.Exec("DELETE FROM categories WHERE id = ?", orphan.ID).Error)

	_, err := s.repo.GetAllByUserID(s.user.ID)
	s.Error(err)
	s.True(errors.Is(err, ErrOrphanedCategory))
}

func (s *TransactionRepositorySuite) TestCountByCategoryID() {
	s.newTransaction(s.user, s.food, "10.00", "2024-01-10")
	s.newTransaction(s.another, s.food, "10.00", "2024-01-10")

	count, err := s.repo.CountByCategoryID(s.food.ID)
	s.NoError(err)
	s.Equal(int64(2), count)

	count, err = s.repo.CountByCategoryID(s.salary.ID)
	s.NoError(err)
	s.Zero(count)
}

func (s *TransactionRepositorySuite) newRecurring(date string, next string) *models.Transaction {
	d, err := models.ParseDate(date)
	s.Require().NoError(err)
	n, err := models.ParseDate(next)
	s.Require().NoError(err)

	txn := &models.Transaction{
		UserID:            s.user.ID,
		CategoryID:        s.food.ID,
		Type:              models.TransactionTypeExpense,
		Amount:            decimal.RequireFromString("9.99"),
		TransactionDate:   d,
		IsRecurring:       true,
		Frequency:         models.FrequencyMonthly,
		NextExecutionDate: &n,
	}
	txn.ApplyRecurringDefaults()
	s.Require().NoError(s.repo.Create(txn))
	return txn
}

func (s *TransactionRepositorySuite) TestGetDueRecurring() {
	due := s.newRecurring("2024-01-05", "2024-02-05")
	s.newRecurring("2024-01-20", "2024-02-20")
	s.newTransaction(s.user, s.food, "10.00", "2024-01-01")

	transactions, err := s.repo.GetDueRecurring(models.NewDate(2024, 2, 10), 10)
	s.Require().NoError(err)
	s.Require().Len(transactions, 1)
	s.Equal(due.ID, transactions[0].ID)

	inactive := s.newRecurring("2024-01-01", "2024-02-01")
	s.Require().NoError(s.db.Model(&models.Transaction{}).Where("id = ?", inactive.ID).
		Updates(map[string]interface{}{"is_active": false}).Error)

	transactions, err = s.repo.GetDueRecurring(models.NewDate(2024, 2, 10), 10)
	s.Require().NoError(err)
	s.Len(transactions, 1)
}

func (s *TransactionRepositorySuite) TestSaveOccurrences() {
	template := s.newRecurring("2024-01-05", "2024-02-05")

	occurrences := []*models.Transaction{
		template.Occurrence(models.NewDate(2024, 2, 5)),
		template.Occurrence(models.NewDate(2024, 3, 5)),
	}
	next := models.NewDate(2024, 4, 5)
	template.NextExecutionDate = &next

	s.Require().NoError(s.repo.SaveOccurrences(template, occurrences))

	all, err := s.repo.GetAllByUserID(s.user.ID)
	s.Require().NoError(err)
	s.Len(all, 3)

	reloaded, err := s.repo.GetByIDForUser(template.ID, s.user.ID)
	s.Require().NoError(err)
	s.Require().NotNil(reloaded.NextExecutionDate)
	s.Equal("2024-04-05", reloaded.NextExecutionDate.String())
	s.True(reloaded.IsActive)
}

func (s *TransactionRepositorySuite) TestSaveOccurrences_UnknownTemplateRollsBack() {
	template := &models.Transaction{ID: uuid.New()}
	occurrence := &models.Transaction{
		UserID:          s.user.ID,
		CategoryID:      s.food.ID,
		Type:            models.TransactionTypeExpense,
		Amount:          decimal.RequireFromString("1.00"),
		TransactionDate: models.NewDate(2024, 1, 1),
	}

	err := s.repo.SaveOccurrences(template, []*models.Transaction{occurrence})
	s.Equal(ErrTransactionNotFound, err)

	all, err := s.repo.GetAllByUserID(s.user.ID)
	s.Require().NoError(err)
	s.Empty(all)
}
