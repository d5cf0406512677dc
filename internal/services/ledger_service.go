package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"saga/internal/core"
)

// Repository is the ledger persistence the service commits through.
type Repository interface {
	Current() *core.Ledger
	Save(ctx context.Context, l *core.Ledger) error
	Reset(ctx context.Context) (*core.Ledger, error)
}

// LedgerService applies every change to the ledger. Each operation validates
// its input, derives a new snapshot from the current one and commits it
// through the repository. Operations run one at a time.
type LedgerService struct {
	mu     sync.Mutex
	repo   Repository
	now    func() time.Time
	newID  func(prefix string) string
	logger *slog.Logger
}

// Option customizes a LedgerService.
type Option func(*LedgerService)

// WithClock sets the time source used for dates and the tracked year.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithIDGenerator replaces the random id generator.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *LedgerService) { s.newID = fn }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *LedgerService) { s.logger = logger }
}

func NewLedgerService(repo Repository, opts ...Option) *LedgerService {
	s := &LedgerService{
		repo:   repo,
		now:    time.Now,
		newID:  func(prefix string) string { return prefix + "-" + uuid.NewString() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errNotLoaded = &core.UnavailableError{Reason: "not loaded"}

// mutate runs fn on a copy of the current ledger, re-aggregates it and saves
// it. Nothing is committed when fn fails or leaves the ledger unchanged.
func (s *LedgerService) mutate(ctx context.Context, op string, fn func(l *core.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.repo.Current()
	if current == nil {
		return errNotLoaded
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		s.logger.DebugContext(ctx, "Ledger operation rejected", "op", op, "error", err)
		return err
	}

	monthly := core.Recompute(next.Transactions, core.TrackedYear(s.now()))
	if !core.MonthlyEqual(monthly, next.MonthlyData) {
		next.MonthlyData = monthly
	}
	if reflect.DeepEqual(current, next) {
		s.logger.DebugContext(ctx, "Ledger operation changed nothing", "op", op)
		return nil
	}

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.WarnContext(ctx, "Ledger change not persisted", "op", op, "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "Ledger updated", "op", op)
	return nil
}

// committed hands v back when the change was applied, even if it failed to persist.
func committed[T any](v T, err error) (T, error) {
	if err != nil && !errors.Is(err, core.ErrPersistence) {
		var zero T
		return zero, err
	}
	return v, err
}

func (s *LedgerService) today() core.Date {
	return core.DateOf(s.now())
}

// Transactions

func (s *LedgerService) AddTransaction(ctx context.Context, in core.Transaction) (core.Transaction, error) {
	in.ID = s.newID("tx")
	in.Source = nil
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	err := s.mutate(ctx, "add transaction", func(l *core.Ledger) error {
		l.Transactions = append(l.Transactions, in)
		return nil
	})
	return committed(in, err)
}

// UpdateTransaction replaces the transaction with id. A synthetic transaction
// keeps its link to the goal or debt that produced it.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, in core.Transaction) (core.Transaction, error) {
	in.ID = id
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	err := s.mutate(ctx, "update transaction", func(l *core.Ledger) error {
		i := findTransaction(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "transaction", ID: id}
		}
		in.Source = l.Transactions[i].Source
		l.Transactions[i] = in
		return nil
	})
	return committed(in, err)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete transaction", func(l *core.Ledger) error {
		i := findTransaction(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "transaction", ID: id}
		}
		l.Transactions = append(l.Transactions[:i], l.Transactions[i+1:]...)
		return nil
	})
}

// Budgets

func (s *LedgerService) AddBudget(ctx context.Context, in core.Budget) (core.Budget, error) {
	in.ID = s.newID("budget")
	if err := in.Validate(); err != nil {
		return core.Budget{}, err
	}
	err := s.mutate(ctx, "add budget", func(l *core.Ledger) error {
		if budgetTaken(l, in.Category, "") {
			return budgetConflict(in.Category)
		}
		l.Budgets = append(l.Budgets, in)
		return nil
	})
	return committed(in, err)
}

func (s *LedgerService) UpdateBudget(ctx context.Context, id string, in core.Budget) (core.Budget, error) {
	in.ID = id
	if err := in.Validate(); err != nil {
		return core.Budget{}, err
	}
	err := s.mutate(ctx, "update budget", func(l *core.Ledger) error {
		i := findBudget(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "budget", ID: id}
		}
		if budgetTaken(l, in.Category, id) {
			return budgetConflict(in.Category)
		}
		l.Budgets[i] = in
		return nil
	})
	return committed(in, err)
}

func (s *LedgerService) DeleteBudget(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete budget", func(l *core.Ledger) error {
		i := findBudget(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "budget", ID: id}
		}
		l.Budgets = append(l.Budgets[:i], l.Budgets[i+1:]...)
		return nil
	})
}

// Savings goals

func (s *LedgerService) AddSavingsGoal(ctx context.Context, in core.SavingsGoal) (core.SavingsGoal, error) {
	in.ID = s.newID("savings")
	if err := in.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	err := s.mutate(ctx, "add savings goal", func(l *core.Ledger) error {
		l.SavingsGoals = append(l.SavingsGoals, in)
		return nil
	})
	return committed(in, err)
}

func (s *LedgerService) UpdateSavingsGoal(ctx context.Context, id string, in core.SavingsGoal) (core.SavingsGoal, error) {
	in.ID = id
	if err := in.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	err := s.mutate(ctx, "update savings goal", func(l *core.Ledger) error {
		i := findGoal(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "savings goal", ID: id}
		}
		l.SavingsGoals[i] = in
		return nil
	})
	return committed(in, err)
}

func (s *LedgerService) DeleteSavingsGoal(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete savings goal", func(l *core.Ledger) error {
		i := findGoal(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "savings goal", ID: id}
		}
		l.SavingsGoals = append(l.SavingsGoals[:i], l.SavingsGoals[i+1:]...)
		return nil
	})
}

// ContributeSavings adds amount to a goal and records it as a "Savings"
// expense dated today. The goal may end up above its target.
func (s *LedgerService) ContributeSavings(ctx context.Context, id string, amount core.Money) (core.SavingsGoal, core.Transaction, error) {
	if err := amount.Validate(); err != nil {
		return core.SavingsGoal{}, core.Transaction{}, err
	}
	var (
		goal core.SavingsGoal
		tx   core.Transaction
	)
	err := s.mutate(ctx, "contribute savings", func(l *core.Ledger) error {
		i := findGoal(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "savings goal", ID: id}
		}
		l.SavingsGoals[i].CurrentAmount = l.SavingsGoals[i].CurrentAmount.Add(amount)
		goal = l.SavingsGoals[i]
		tx = core.ContributionTransaction(s.newID("tx"), goal, amount, s.today())
		l.Transactions = append(l.Transactions, tx)
		return nil
	})
	if err != nil && !errors.Is(err, core.ErrPersistence) {
		return core.SavingsGoal{}, core.Transaction{}, err
	}
	return goal, tx, err
}

// Debts

// AddDebt records a new, not yet completed debt.
func (s *LedgerService) AddDebt(ctx context.Context, in core.Debt) (core.Debt, error) {
	in.ID = s.newID("debt")
	in.IsCompleted = false
	if err := in.Validate(); err != nil {
		return core.Debt{}, err
	}
	err := s.mutate(ctx, "add debt", func(l *core.Ledger) error {
		l.Debts = append(l.Debts, in)
		return nil
	})
	return committed(in, err)
}

// UpdateDebt replaces a debt. A debt with nothing remaining is completed.
func (s *LedgerService) UpdateDebt(ctx context.Context, id string, in core.Debt) (core.Debt, error) {
	in.ID = id
	if err := in.Validate(); err != nil {
		return core.Debt{}, err
	}
	in.IsCompleted = in.IsCompleted || in.RemainingAmount.IsZero()
	err := s.mutate(ctx, "update debt", func(l *core.Ledger) error {
		i := findDebt(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "debt", ID: id}
		}
		l.Debts[i] = in
		return nil
	})
	return committed(in, err)
}

func (s *LedgerService) DeleteDebt(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete debt", func(l *core.Ledger) error {
		i := findDebt(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "debt", ID: id}
		}
		l.Debts = append(l.Debts[:i], l.Debts[i+1:]...)
		return nil
	})
}

// MakeDebtPayment lowers the remaining balance by amount, never below zero,
// and records the full entered amount as a "Debt Payment" expense.
func (s *LedgerService) MakeDebtPayment(ctx context.Context, id string, amount core.Money) (core.Debt, core.Transaction, error) {
	if err := amount.Validate(); err != nil {
		return core.Debt{}, core.Transaction{}, err
	}
	var (
		debt core.Debt
		tx   core.Transaction
	)
	err := s.mutate(ctx, "make debt payment", func(l *core.Ledger) error {
		i := findDebt(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "debt", ID: id}
		}
		d := &l.Debts[i]
		d.RemainingAmount = d.RemainingAmount.Sub(amount)
		if d.RemainingAmount.Cents < 0 {
			d.RemainingAmount = core.Money{}
		}
		d.IsCompleted = d.RemainingAmount.IsZero()
		debt = *d
		tx = core.PaymentTransaction(s.newID("tx"), debt, amount, s.today())
		l.Transactions = append(l.Transactions, tx)
		return nil
	})
	if err != nil && !errors.Is(err, core.ErrPersistence) {
		return core.Debt{}, core.Transaction{}, err
	}
	return debt, tx, err
}

// MarkDebtComplete clears a debt without recording a payment.
func (s *LedgerService) MarkDebtComplete(ctx context.Context, id string) (core.Debt, error) {
	var debt core.Debt
	err := s.mutate(ctx, "mark debt complete", func(l *core.Ledger) error {
		i := findDebt(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "debt", ID: id}
		}
		l.Debts[i].RemainingAmount = core.Money{}
		l.Debts[i].IsCompleted = true
		debt = l.Debts[i]
		return nil
	})
	return committed(debt, err)
}

// Categories

func (s *LedgerService) AddCategory(ctx context.Context, in core.Category) (core.Category, error) {
	in.ID = s.newID("cat")
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	err := s.mutate(ctx, "add category", func(l *core.Ledger) error {
		if findCategory(l, in.ID) >= 0 {
			return &core.ConflictError{Kind: "category", Reason: "a category with this id already exists"}
		}
		if categoryTaken(l, in.Name, "") {
			return categoryConflict(in.Name)
		}
		l.Categories = append(l.Categories, in)
		return nil
	})
	return committed(in, err)
}

// UpdateCategory replaces a category. A rename is carried over to every
// transaction and budget that referenced the old name.
func (s *LedgerService) UpdateCategory(ctx context.Context, id string, in core.Category) (core.Category, error) {
	in.ID = id
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	err := s.mutate(ctx, "update category", func(l *core.Ledger) error {
		i := findCategory(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "category", ID: id}
		}
		if categoryTaken(l, in.Name, id) {
			return categoryConflict(in.Name)
		}
		old := l.Categories[i].Name
		if old != in.Name {
			for j := range l.Transactions {
				if core.SameName(l.Transactions[j].Category, old) {
					l.Transactions[j].Category = in.Name
				}
			}
			for j := range l.Budgets {
				if core.SameName(l.Budgets[j].Category, old) {
					l.Budgets[j].Category = in.Name
				}
			}
		}
		l.Categories[i] = in
		return nil
	})
	return committed(in, err)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete category", func(l *core.Ledger) error {
		i := findCategory(l, id)
		if i < 0 {
			return &core.NotFoundError{Kind: "category", ID: id}
		}
		if l.CategoryInUse(l.Categories[i].Name) {
			return &core.ConflictError{Kind: "category", Reason: "cannot delete a category that is in use"}
		}
		l.Categories = append(l.Categories[:i], l.Categories[i+1:]...)
		return nil
	})
}

// SetSelectedMonth selects one of the 12 months of the tracked year.
func (s *LedgerService) SetSelectedMonth(ctx context.Context, month string) error {
	if core.MonthIndex(core.TrackedYear(s.now()), month) < 0 {
		return core.ErrInvalidMonth
	}
	return s.mutate(ctx, "set selected month", func(l *core.Ledger) error {
		l.SelectedMonth = month
		return nil
	})
}

// Reset discards all data and starts again from the seed ledger.
func (s *LedgerService) Reset(ctx context.Context) (*core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.repo.Reset(ctx)
	if err != nil {
		return l, fmt.Errorf("reset ledger: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger reset")
	return l, nil
}

func findTransaction(l *core.Ledger, id string) int {
	for i, tx := range l.Transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func findBudget(l *core.Ledger, id string) int {
	for i, b := range l.Budgets {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func findGoal(l *core.Ledger, id string) int {
	for i, g := range l.SavingsGoals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func findDebt(l *core.Ledger, id string) int {
	for i, d := range l.Debts {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func findCategory(l *core.Ledger, id string) int {
	for i, c := range l.Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// budgetTaken reports whether a budget other than exceptID covers category.
func budgetTaken(l *core.Ledger, category, exceptID string) bool {
	for _, b := range l.Budgets {
		if b.ID != exceptID && core.SameName(b.Category, category) {
			return true
		}
	}
	return false
}

func categoryTaken(l *core.Ledger, name, exceptID string) bool {
	for _, c := range l.Categories {
		if c.ID != exceptID && core.SameName(c.Name, name) {
			return true
		}
	}
	return false
}

func budgetConflict(category string) error {
	return &core.ConflictError{Kind: "budget", Reason: fmt.Sprintf("a budget for %s already exists", category)}
}

func categoryConflict(name string) error {
	return &core.ConflictError{Kind: "category", Reason: fmt.Sprintf("a category named %s already exists", name)}
}
