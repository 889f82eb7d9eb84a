package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strings"
	"time"

	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	biWeeklyDays      = 14
	maxDailyPurchases = 3
	salaryCategory    = "Salary"
	MaxDemoMonths     = 24
)

var ErrInvalidDemoPeriod = errors.New("demo period must be between 1 and 24 months")

type demoMerchant struct {
	name     string
	category string
	min, max float64
}

// merchants map onto the default expense categories
var demoMerchants = []demoMerchant{
	{"Whole Foods Market", "Food", 15, 180},
	{"Trader Joe's", "Food", 15, 120},
	{"Starbucks", "Food", 4, 12},
	{"Chipotle Mexican Grill", "Food", 9, 35},
	{"Panera Bread", "Food", 8, 30},
	{"Uber", "Transport", 10, 60},
	{"Shell", "Transport", 30, 80},
	{"Metro Transit", "Transport", 2.5, 5},
	{"Netflix", "Entertainment", 15.49, 15.49},
	{"AMC Theatres", "Entertainment", 12, 45},
	{"Steam", "Entertainment", 5, 70},
	{"CVS Pharmacy", "Health", 8, 90},
	{"City Dental", "Health", 60, 300},
	{"Amazon.com", "Shopping", 12, 250},
	{"Target", "Shopping", 20, 150},
	{"Best Buy", "Shopping", 30, 450},
	{"Coursera", "Education", 39, 79},
}

var demoBills = []demoMerchant{
	{"Monthly Rent", "Housing", 1200, 1200},
	{"Pacific Gas & Electric", "Utilities", 60, 180},
	{"Comcast Xfinity", "Utilities", 70, 90},
}

// DemoDataService fills an account with a plausible transaction history so the dashboard views
// have something to show in local environments.
type DemoDataService struct {
	userRepo        repositories.UserRepositoryInterface
	categoryRepo    repositories.CategoryRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	rng             *rand.Rand
}

func NewDemoDataService(
	userRepo repositories.UserRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	seed int64,
) DemoDataServiceInterface {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DemoDataService{
		userRepo:        userRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		rng:             rand.New(rand.NewSource(seed)),
	}
}

// SeedUser generates months of history ending at end and stores it for the user with the given email.
func (s *DemoDataService) SeedUser(ctx context.Context, email string, months int, end time.Time) (int, error) {
	if months < 1 || months > MaxDemoMonths {
		return 0, ErrInvalidDemoPeriod
	}

	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to get user: %w", err)
	}

	categories, err := s.categoryRepo.GetVisibleToUser(user.ID, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}

	endDate := models.DateOf(end)
	startDate := endDate.AddMonths(-months)

	transactions := s.Generate(user.ID, categories, startDate, endDate)
	for i, txn := range transactions {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := s.transactionRepo.Create(txn); err != nil {
			return i, fmt.Errorf("failed to store demo transaction: %w", err)
		}
	}

	slog.Info("seeded demo transactions",
		"user_id", user.ID,
		"count", len(transactions),
		"start", startDate.String(),
		"end", endDate.String(),
	)

	return len(transactions), nil
}

// Generate builds the history between start (exclusive) and end (inclusive), sorted by date.
// Merchants whose category is not in categories are skipped.
func (s *DemoDataService) Generate(userID uuid.UUID, categories []models.Category, start, end models.Date) []*models.Transaction {
	byName := make(map[string]*models.Category, len(categories))
	for i := range categories {
		byName[strings.ToLower(categories[i].Name)] = &categories[i]
	}

	var transactions []*models.Transaction
	transactions = append(transactions, s.salaries(userID, byName, start, end)...)
	transactions = append(transactions, s.bills(userID, byName, start, end)...)
	transactions = append(transactions, s.purchases(userID, byName, start, end)...)

	slices.SortStableFunc(transactions, func(a, b *models.Transaction) int {
		return a.TransactionDate.Compare(b.TransactionDate.Time)
	})

	return transactions
}

func (s *DemoDataService) salaries(userID uuid.UUID, byName map[string]*models.Category, start, end models.Date) []*models.Transaction {
	category, ok := byName[strings.ToLower(salaryCategory)]
	if !ok {
		return nil
	}

	salaryAmounts := []int64{2500, 3000, 3500, 4000, 4500}
	amount := decimal.NewFromInt(salaryAmounts[s.rng.Intn(len(salaryAmounts))])

	var transactions []*models.Transaction
	for day := start.AddDays(biWeeklyDays); !day.After(end); day = day.AddDays(biWeeklyDays) {
		transactions = append(transactions, newDemoTransaction(userID, category, amount, "Direct Deposit - Salary Payment", "ACME Corporation", day))
	}
	return transactions
}

func (s *DemoDataService) bills(userID uuid.UUID, byName map[string]*models.Category, start, end models.Date) []*models.Transaction {
	var transactions []*models.Transaction

	for month := models.NewDate(start.Year(), start.Month(), 1).AddMonths(1); !month.After(end); month = month.AddMonths(1) {
		for _, bill := range demoBills {
			category, ok := byName[strings.ToLower(bill.category)]
			if !ok {
				continue
			}

			billDate := month.AddDays(s.rng.Intn(28))
			if billDate.After(end) {
				continue
			}
			transactions = append(transactions, newDemoTransaction(userID, category, s.amount(bill), "Bill Payment - "+bill.name, "", billDate))
		}
	}

	return transactions
}

func (s *DemoDataService) purchases(userID uuid.UUID, byName map[string]*models.Category, start, end models.Date) []*models.Transaction {
	var transactions []*models.Transaction

	for day := start.AddDays(1); !day.After(end); day = day.AddDays(1) {
		for i := s.rng.Intn(maxDailyPurchases + 1); i > 0; i-- {
			merchant := demoMerchants[s.rng.Intn(len(demoMerchants))]
			category, ok := byName[strings.ToLower(merchant.category)]
			if !ok {
				continue
			}
			transactions = append(transactions, newDemoTransaction(userID, category, s.amount(merchant), "Purchase at "+merchant.name, merchant.name, day))
		}
	}

	return transactions
}

func (s *DemoDataService) amount(merchant demoMerchant) decimal.Decimal {
	value := merchant.min + s.rng.Float64()*(merchant.max-merchant.min)
	amount := decimal.NewFromFloat(value).Round(2)
	if amount.LessThan(models.MinTransactionAmount) {
		return models.MinTransactionAmount
	}
	return amount
}

func newDemoTransaction(userID uuid.UUID, category *models.Category, amount decimal.Decimal, description, location string, date models.Date) *models.Transaction {
	return &models.Transaction{
		UserID:          userID,
		CategoryID:      category.ID,
		Type:            category.Type,
		Amount:          amount,
		Description:     description,
		Location:        location,
		TransactionDate: date,
	}
}
