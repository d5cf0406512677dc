package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saga/internal/core"
)

var testNow = time.Date(2024, time.April, 10, 9, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu      sync.Mutex
	current *core.Ledger
	saves   int
	saveErr error
}

func (r *fakeRepo) Current() *core.Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Clone()
}

func (r *fakeRepo) Save(_ context.Context, l *core.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = l.Clone()
	r.saves++
	if r.saveErr != nil {
		return &core.PersistenceError{Op: "save", Err: r.saveErr}
	}
	return nil
}

func (r *fakeRepo) Reset(_ context.Context) (*core.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = core.SeedLedger(testNow, false)
	return r.current.Clone(), nil
}

func newTestService(t *testing.T) (*LedgerService, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{current: core.SeedLedger(testNow, false)}
	n := 0
	svc := NewLedgerService(repo,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func(prefix string) string {
			n++
			return fmt.Sprintf("%s-t%d", prefix, n)
		}),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, repo
}

func income(day int, cents int64) core.Transaction {
	return core.Transaction{Date: core.NewDate(2024, 4, day), Description: "Pay", Amount: core.Cents(cents), Category: "Salary", Type: core.Income}
}

func expense(day int, cents int64, category string) core.Transaction {
	return core.Transaction{Date: core.NewDate(2024, 4, day), Description: "Spend", Amount: core.Cents(cents), Category: category, Type: core.Expense}
}

func TestAddTransactionReaggregates(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, income(1, 100000))
	require.NoError(t, err)
	assert.Equal(t, "tx-t1", tx.ID)

	_, err = svc.AddTransaction(ctx, expense(2, 25000, "Food"))
	require.NoError(t, err)

	april, ok := svc.CurrentMonthSummary()
	require.True(t, ok)
	assert.Equal(t, int64(100000), april.Income.Cents)
	assert.Equal(t, int64(25000), april.Expenses.Cents)
	assert.Equal(t, int64(75000), april.Balance.Cents)
	assert.Equal(t, int64(75), april.SavingsRate)
	assert.Equal(t, 2, repo.saves)
}

func TestAddTransactionValidation(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		tx   core.Transaction
	}{
		{"zero amount", income(1, 0)},
		{"negative amount", income(1, -5)},
		{"empty category", expense(1, 100, "  ")},
		{"missing date", core.Transaction{Amount: core.Cents(1), Category: "Food", Type: core.Expense}},
		{"bad type", core.Transaction{Date: core.NewDate(2024, 4, 1), Amount: core.Cents(1), Category: "Food", Type: "transfer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTransaction(ctx, tt.tx)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
	assert.Zero(t, repo.saves)
	assert.Empty(t, svc.Ledger().Transactions)
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, expense(3, 1000, "Food"))
	require.NoError(t, err)

	updated := tx
	updated.Amount = core.Cents(2500)
	_, err = svc.UpdateTransaction(ctx, tx.ID, updated)
	require.NoError(t, err)
	april, _ := svc.CurrentMonthSummary()
	assert.Equal(t, int64(2500), april.Expenses.Cents)

	_, err = svc.UpdateTransaction(ctx, "missing", updated)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))
	april, _ = svc.CurrentMonthSummary()
	assert.Zero(t, april.Expenses.Cents)

	assert.ErrorIs(t, svc.DeleteTransaction(ctx, tx.ID), core.ErrNotFound)
}

func TestNoOpMutationDoesNotWrite(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, income(1, 5000))
	require.NoError(t, err)
	saves := repo.saves

	_, err = svc.UpdateTransaction(ctx, tx.ID, tx)
	require.NoError(t, err)
	require.NoError(t, svc.SetSelectedMonth(ctx, svc.Ledger().SelectedMonth))
	assert.Equal(t, saves, repo.saves)
}

func TestBudgetUniqueness(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	food, err := svc.AddBudget(ctx, core.Budget{Category: "Food", Amount: core.Cents(30000)})
	require.NoError(t, err)

	_, err = svc.AddBudget(ctx, core.Budget{Category: "Food", Amount: core.Cents(20000)})
	assert.ErrorIs(t, err, core.ErrConflict)
	_, err = svc.AddBudget(ctx, core.Budget{Category: "food ", Amount: core.Cents(20000)})
	assert.ErrorIs(t, err, core.ErrConflict)

	budgets := svc.Ledger().Budgets
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(30000), budgets[0].Amount.Cents)

	housing, err := svc.AddBudget(ctx, core.Budget{Category: "Housing", Amount: core.Cents(100000)})
	require.NoError(t, err)
	_, err = svc.UpdateBudget(ctx, housing.ID, core.Budget{Category: "Food", Amount: core.Cents(1)})
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = svc.UpdateBudget(ctx, food.ID, core.Budget{Category: "Food", Amount: core.Cents(35000)})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteBudget(ctx, "missing"), core.ErrNotFound)
	require.NoError(t, svc.DeleteBudget(ctx, food.ID))
	assert.Len(t, svc.Ledger().Budgets, 1)
}

func TestCategoryInUseProtection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rent, err := svc.AddCategory(ctx, core.Category{Name: "Rent", Color: "#000000", Type: core.Expense})
	require.NoError(t, err)
	matching := 0
	for _, c := range svc.Ledger().Categories {
		if c.ID == rent.ID {
			matching++
		}
	}
	require.Equal(t, 1, matching, "category id must be unique")
	tx, err := svc.AddTransaction(ctx, expense(1, 90000, "Rent"))
	require.NoError(t, err)

	before := svc.Ledger().Categories
	err = svc.DeleteCategory(ctx, rent.ID)
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, "Cannot delete a category that is in use", core.Notification(err))
	assert.Equal(t, before, svc.Ledger().Categories)

	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))
	require.NoError(t, svc.DeleteCategory(ctx, rent.ID))
	assert.Len(t, svc.Ledger().Categories, len(before)-1)
}

func TestCategoryInUseByBudget(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddBudget(ctx, core.Budget{Category: "food", Amount: core.Cents(100)})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, "cat-2"), core.ErrConflict)
}

func TestCategoryNamesAreCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCategory(ctx, core.Category{Name: "HOUSING", Type: core.Expense})
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = svc.UpdateCategory(ctx, "cat-2", core.Category{Name: "housing", Type: core.Expense})
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = svc.UpdateCategory(ctx, "missing", core.Category{Name: "X", Type: core.Expense})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCategoryRenameCascades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddTransaction(ctx, expense(1, 500, "Food"))
	require.NoError(t, err)
	_, err = svc.AddBudget(ctx, core.Budget{Category: "Food", Amount: core.Cents(1000)})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, "cat-2", core.Category{Name: "Groceries", Color: "#F97316", Type: core.Expense})
	require.NoError(t, err)

	l := svc.Ledger()
	assert.Equal(t, "Groceries", l.Transactions[0].Category)
	assert.Equal(t, "Groceries", l.Budgets[0].Category)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, "cat-2"), core.ErrConflict)
}

func TestContributeSavings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	goal, err := svc.AddSavingsGoal(ctx, core.SavingsGoal{Name: "Bike", TargetAmount: core.Cents(50000), CurrentAmount: core.Cents(1000)})
	require.NoError(t, err)

	updated, tx, err := svc.ContributeSavings(ctx, goal.ID, core.Cents(10000))
	require.NoError(t, err)
	assert.Equal(t, int64(11000), updated.CurrentAmount.Cents)
	assert.Equal(t, core.SavingsCategory, tx.Category)
	assert.Equal(t, core.Expense, tx.Type)
	assert.Equal(t, int64(10000), tx.Amount.Cents)
	assert.Equal(t, "Contribution to Bike", tx.Description)
	assert.Equal(t, &core.Source{Kind: core.SourceSavings, ID: goal.ID}, tx.Source)
	assert.Equal(t, core.NewDate(2024, 4, 10), tx.Date)

	l := svc.Ledger()
	require.Len(t, l.Transactions, 1)
	assert.Equal(t, int64(11000), l.SavingsGoals[0].CurrentAmount.Cents)
	april, _ := l.MonthSummary("April 2024")
	assert.Equal(t, int64(10000), april.Expenses.Cents)

	_, _, err = svc.ContributeSavings(ctx, goal.ID, core.Cents(0))
	assert.ErrorIs(t, err, core.ErrValidation)
	_, _, err = svc.ContributeSavings(ctx, "missing", core.Cents(100))
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Len(t, svc.Ledger().Transactions, 1)
}

func TestSavingsGoalValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddSavingsGoal(ctx, core.SavingsGoal{Name: "Car", TargetAmount: core.Cents(100), CurrentAmount: core.Cents(200)})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = svc.AddSavingsGoal(ctx, core.SavingsGoal{Name: "Car", TargetAmount: core.Cents(0)})
	assert.ErrorIs(t, err, core.ErrValidation)

	goal, err := svc.AddSavingsGoal(ctx, core.SavingsGoal{Name: "Car", TargetAmount: core.Cents(100)})
	require.NoError(t, err)
	_, err = svc.UpdateSavingsGoal(ctx, goal.ID, core.SavingsGoal{Name: "Car", TargetAmount: core.Cents(100), CurrentAmount: core.Cents(101)})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = svc.UpdateSavingsGoal(ctx, "missing", core.SavingsGoal{Name: "Car", TargetAmount: core.Cents(100)})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, svc.DeleteSavingsGoal(ctx, goal.ID))
	assert.ErrorIs(t, svc.DeleteSavingsGoal(ctx, goal.ID), core.ErrNotFound)
}

func TestDebtPaymentFloorsAtZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	debt, err := svc.AddDebt(ctx, core.Debt{
		Name: "Card", TotalAmount: core.Cents(10000), RemainingAmount: core.Cents(5000),
		InterestRate: 19.9, MinimumPayment: core.Cents(1000),
	})
	require.NoError(t, err)
	assert.False(t, debt.IsCompleted)

	paid, tx, err := svc.MakeDebtPayment(ctx, debt.ID, core.Cents(7500))
	require.NoError(t, err)
	assert.Zero(t, paid.RemainingAmount.Cents)
	assert.True(t, paid.IsCompleted)
	assert.Equal(t, int64(7500), tx.Amount.Cents, "the full entered amount is recorded")
	assert.Equal(t, core.DebtPaymentCategory, tx.Category)
	assert.Equal(t, core.Expense, tx.Type)
	assert.Equal(t, "Payment to Card", tx.Description)

	l := svc.Ledger()
	assert.Zero(t, l.Debts[0].RemainingAmount.Cents)
	require.Len(t, l.Transactions, 1)
}

func TestDebtPartialPayment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	debt, err := svc.AddDebt(ctx, core.Debt{Name: "Loan", TotalAmount: core.Cents(10000), RemainingAmount: core.Cents(10000), MinimumPayment: core.Cents(500)})
	require.NoError(t, err)

	paid, _, err := svc.MakeDebtPayment(ctx, debt.ID, core.Cents(2500))
	require.NoError(t, err)
	assert.Equal(t, int64(7500), paid.RemainingAmount.Cents)
	assert.False(t, paid.IsCompleted)

	_, _, err = svc.MakeDebtPayment(ctx, debt.ID, core.Cents(-1))
	assert.ErrorIs(t, err, core.ErrValidation)
	_, _, err = svc.MakeDebtPayment(ctx, "missing", core.Cents(1))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMarkDebtCompleteRecordsNoTransaction(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	debt, err := svc.AddDebt(ctx, core.Debt{Name: "Loan", TotalAmount: core.Cents(10000), RemainingAmount: core.Cents(4000), MinimumPayment: core.Cents(500)})
	require.NoError(t, err)

	done, err := svc.MarkDebtComplete(ctx, debt.ID)
	require.NoError(t, err)
	assert.Zero(t, done.RemainingAmount.Cents)
	assert.True(t, done.IsCompleted)
	assert.Empty(t, svc.Ledger().Transactions)

	_, err = svc.MarkDebtComplete(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDebtValidationAndUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddDebt(ctx, core.Debt{Name: "Loan", TotalAmount: core.Cents(100), RemainingAmount: core.Cents(200), MinimumPayment: core.Cents(1)})
	assert.ErrorIs(t, err, core.ErrValidation)

	debt, err := svc.AddDebt(ctx, core.Debt{Name: "Loan", TotalAmount: core.Cents(100), RemainingAmount: core.Cents(100), MinimumPayment: core.Cents(1)})
	require.NoError(t, err)

	updated, err := svc.UpdateDebt(ctx, debt.ID, core.Debt{Name: "Loan", TotalAmount: core.Cents(100), RemainingAmount: core.Cents(0), MinimumPayment: core.Cents(1)})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)

	_, err = svc.UpdateDebt(ctx, "missing", updated)
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, svc.DeleteDebt(ctx, debt.ID))
	assert.ErrorIs(t, svc.DeleteDebt(ctx, debt.ID), core.ErrNotFound)
}

func TestSetSelectedMonth(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetSelectedMonth(ctx, "January 2024"))
	assert.Equal(t, "January 2024", svc.Ledger().SelectedMonth)
	_, ok := svc.PreviousMonthSummary()
	assert.False(t, ok, "January has no previous month")

	for _, bad := range []string{"", "Smarch 2024", "January 2023", "2024-01"} {
		err := svc.SetSelectedMonth(ctx, bad)
		assert.ErrorIs(t, err, core.ErrValidation, bad)
	}
	assert.Equal(t, "January 2024", svc.Ledger().SelectedMonth)
}

func TestPersistenceFailureKeepsChange(t *testing.T) {
	svc, repo := newTestService(t)
	repo.saveErr = errors.New("quota exceeded")

	tx, err := svc.AddTransaction(context.Background(), income(1, 100))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrPersistence)
	assert.NotEmpty(t, tx.ID, "the committed entity is still returned")
	assert.Len(t, svc.Ledger().Transactions, 1)
}

func TestReset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.AddTransaction(ctx, income(1, 100))
	require.NoError(t, err)

	l, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Empty(t, l.Transactions)
	assert.Empty(t, svc.Ledger().Transactions)
}

func TestOperationsBeforeLoad(t *testing.T) {
	svc := NewLedgerService(&fakeRepo{})
	_, err := svc.AddTransaction(context.Background(), income(1, 100))
	assert.ErrorIs(t, err, core.ErrUnavailable)
	assert.NotEqual(t, "Something went wrong", core.Notification(err))
}

func TestAddCategoryRejectsDuplicateID(t *testing.T) {
	repo := &fakeRepo{current: core.SeedLedger(testNow, false)}
	svc := NewLedgerService(repo,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func(prefix string) string { return prefix + "-1" }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	before := svc.Ledger().Categories

	_, err := svc.AddCategory(context.Background(), core.Category{Name: "Rent", Color: "#000000", Type: core.Expense})
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, before, svc.Ledger().Categories)
	assert.Zero(t, repo.saves)
}
