package services

import (
	"sort"
	"strings"

	"saga/internal/core"
)

// Ledger returns a copy of the current snapshot.
func (s *LedgerService) Ledger() *core.Ledger {
	return s.repo.Current()
}

func (s *LedgerService) snapshot() *core.Ledger {
	if l := s.repo.Current(); l != nil {
		return l
	}
	return core.NewLedger(core.TrackedYear(s.now()), core.MonthLabel(core.TrackedYear(s.now()), s.now().Month()))
}

// CurrentMonthSummary is the rollup of the selected month.
func (s *LedgerService) CurrentMonthSummary() (core.MonthlyData, bool) {
	l := s.snapshot()
	return l.MonthSummary(l.SelectedMonth)
}

// PreviousMonthSummary is the rollup of the month before the selected one;
// absent when January is selected.
func (s *LedgerService) PreviousMonthSummary() (core.MonthlyData, bool) {
	l := s.snapshot()
	return l.PreviousMonthSummary(l.SelectedMonth)
}

// resolveMonth defaults an empty month to the selected one.
func resolveMonth(l *core.Ledger, month string) string {
	if strings.TrimSpace(month) == "" {
		return l.SelectedMonth
	}
	return month
}

func (s *LedgerService) BudgetProgress(month string) (core.BudgetReport, error) {
	l := s.snapshot()
	return core.BudgetProgress(l, resolveMonth(l, month))
}

func (s *LedgerService) SpendingByCategory(month string) ([]core.CategoryAmount, error) {
	l := s.snapshot()
	return core.SpendingByCategory(l, resolveMonth(l, month))
}

func (s *LedgerService) SavingsOverview() core.SavingsOverview {
	return core.Savings(s.snapshot())
}

func (s *LedgerService) DebtOverview() core.DebtOverview {
	return core.Debts(s.snapshot())
}

func (s *LedgerService) RecentTransactions(n int) []core.Transaction {
	return core.RecentTransactions(s.snapshot(), n)
}

func (s *LedgerService) AvailableBudgetCategories() []core.Category {
	return core.AvailableBudgetCategories(s.snapshot())
}

// MonthNavigation reports the months reachable from the selected one.
func (s *LedgerService) MonthNavigation() core.MonthNavigation {
	now := s.now()
	return core.Navigate(core.TrackedYear(now), s.snapshot().SelectedMonth, now)
}

// TransactionFilter narrows ListTransactions. Zero fields match everything.
type TransactionFilter struct {
	Month    string
	Type     core.EntryType
	Category string
	Query    string
}

// ListTransactions returns the matching transactions, newest first.
func (s *LedgerService) ListTransactions(f TransactionFilter) ([]core.Transaction, error) {
	var (
		year  int
		month int
	)
	if f.Month != "" {
		y, m, err := core.ParseMonthLabel(f.Month)
		if err != nil {
			return nil, err
		}
		year, month = y, int(m)
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, core.ErrInvalidType
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := []core.Transaction{}
	for _, tx := range s.snapshot().Transactions {
		if month != 0 && (tx.Date.Year() != year || int(tx.Date.Month()) != month) {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.Category != "" && !core.SameName(tx.Category, f.Category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(tx.Description), query) &&
			!strings.Contains(strings.ToLower(tx.Category), query) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

// Overview is the dashboard view of the selected month.
type Overview struct {
	Month            string                `json:"month"`
	Current          core.MonthlyData      `json:"current"`
	Previous         *core.MonthlyData     `json:"previous,omitempty"`
	IncomeChange     int64                 `json:"incomeChange"`
	ExpenseChange    int64                 `json:"expenseChange"`
	BalanceChange    int64                 `json:"balanceChange"`
	Navigation       core.MonthNavigation  `json:"navigation"`
	Savings          core.SavingsOverview  `json:"savings"`
	Debts            core.DebtOverview     `json:"debts"`
	Spending         []core.CategoryAmount `json:"spending"`
	Recent           []core.Transaction    `json:"recent"`
	MonthlyBreakdown []core.MonthlyData    `json:"monthlyBreakdown"`
}

const overviewRecent = 5

// Overview assembles the dashboard from one consistent snapshot.
func (s *LedgerService) Overview() Overview {
	l := s.snapshot()
	now := s.now()
	o := Overview{
		Month:            l.SelectedMonth,
		Navigation:       core.Navigate(core.TrackedYear(now), l.SelectedMonth, now),
		Savings:          core.Savings(l),
		Debts:            core.Debts(l),
		Recent:           core.RecentTransactions(l, overviewRecent),
		MonthlyBreakdown: l.MonthlyData,
	}
	o.Current, _ = l.MonthSummary(l.SelectedMonth)
	if prev, ok := l.PreviousMonthSummary(l.SelectedMonth); ok {
		o.Previous = &prev
		o.IncomeChange = core.PercentChange(o.Current.Income.Cents, prev.Income.Cents)
		o.ExpenseChange = core.PercentChange(o.Current.Expenses.Cents, prev.Expenses.Cents)
		o.BalanceChange = core.PercentChange(o.Current.Balance.Cents, prev.Balance.Cents)
	}
	if spending, err := core.SpendingByCategory(l, l.SelectedMonth); err == nil {
		o.Spending = spending
	}
	if o.Spending == nil {
		o.Spending = []core.CategoryAmount{}
	}
	return o
}
