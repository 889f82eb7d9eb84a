package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"
	"finance-assistant/internal/repositories/repository_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type DemoDataServiceTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	userRepo        *repository_mocks.MockUserRepositoryInterface
	categoryRepo    *repository_mocks.MockCategoryRepositoryInterface
	transactionRepo *repository_mocks.MockTransactionRepositoryInterface
	service         DemoDataServiceInterface
	categories      []models.Category
}

func (s *DemoDataServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.categoryRepo = repository_mocks.NewMockCategoryRepositoryInterface(s.ctrl)
	s.transactionRepo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.service = NewDemoDataService(s.userRepo, s.categoryRepo, s.transactionRepo, 42)
	s.categories = models.DefaultCategories()
	for i := range s.categories {
		s.categories[i].ID = uuid.New()
	}
}

func (s *DemoDataServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestDemoDataServiceSuite(t *testing.T) {
	suite.Run(t, new(DemoDataServiceTestSuite))
}

func (s *DemoDataServiceTestSuite) TestGenerate_ProducesValidHistory() {
	userID := uuid.New()
	start := models.NewDate(2024, 1, 1)
	end := models.NewDate(2024, 3, 31)

	transactions := s.service.Generate(userID, s.categories, start, end)
	s.Require().NotEmpty(transactions)

	var salaries, rent int
	for i, txn := range transactions {
		s.NoError(txn.Validate())
		s.Equal(userID, txn.UserID)
		s.True(txn.TransactionDate.After(start))
		s.False(txn.TransactionDate.After(end))
		if i > 0 {
			s.False(txn.TransactionDate.Before(transactions[i-1].TransactionDate))
		}

		switch txn.Description {
		case "Direct Deposit - Salary Payment":
			salaries++
			s.Equal(models.TransactionTypeIncome, txn.Type)
		case "Bill Payment - Monthly Rent":
			rent++
			s.Equal(models.TransactionTypeExpense, txn.Type)
		}
	}

	s.Equal(6, salaries)
	s.Equal(2, rent)
}

func (s *DemoDataServiceTestSuite) TestGenerate_SkipsMissingCategories() {
	var incomeOnly []models.Category
	for _, category := range s.categories {
		if category.Type == models.TransactionTypeIncome {
			incomeOnly = append(incomeOnly, category)
		}
	}

	transactions := s.service.Generate(uuid.New(), incomeOnly, models.NewDate(2024, 1, 1), models.NewDate(2024, 2, 1))
	for _, txn := range transactions {
		s.Equal(models.TransactionTypeIncome, txn.Type)
	}
}

func (s *DemoDataServiceTestSuite) TestSeedUser() {
	user := &models.User{ID: uuid.New(), Email: "demo@example.com"}

	s.userRepo.EXPECT().GetByEmail("demo@example.com").Return(user, nil)
	s.categoryRepo.EXPECT().GetVisibleToUser(user.ID, models.TransactionType("")).Return(s.categories, nil)
	s.transactionRepo.EXPECT().Create(gomock.Any()).Return(nil).MinTimes(1)

	count, err := s.service.SeedUser(context.Background(), " Demo@Example.com ", 1, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Positive(count)
}

func (s *DemoDataServiceTestSuite) TestSeedUser_UnknownUser() {
	s.userRepo.EXPECT().GetByEmail("ghost@example.com").Return(nil, repositories.ErrUserNotFound)

	_, err := s.service.SeedUser(context.Background(), "ghost@example.com", 3, time.Now())
	s.Equal(ErrUserNotFound, err)
}

func (s *DemoDataServiceTestSuite) TestSeedUser_InvalidPeriod() {
	_, err := s.service.SeedUser(context.Background(), "demo@example.com", 0, time.Now())
	s.Equal(ErrInvalidDemoPeriod, err)

	_, err = s.service.SeedUser(context.Background(), "demo@example.com", MaxDemoMonths+1, time.Now())
	s.Equal(ErrInvalidDemoPeriod, err)
}

func (s *DemoDataServiceTestSuite) TestSeedUser_StoreFailure() {
	user := &models.User{ID: uuid.New(), Email: "demo@example.com"}

	s.userRepo.EXPECT().GetByEmail("demo@example.com").Return(user, nil)
	s.categoryRepo.EXPECT().GetVisibleToUser(user.ID, models.TransactionType("")).Return(s.categories, nil)
	s.transactionRepo.EXPECT().Create(gomock.Any()).Return(errors.New("disk full"))

	count, err := s.service.SeedUser(context.Background(), "demo@example.com", 2, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	s.Require().Error(err)
	s.Zero(count)
}
