package core

import (
	"math"
	"sort"
	"strings"
	"time"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
	Color  string `json:"color"`
}

// BudgetStatus is a budget together with its spending in one month.
type BudgetStatus struct {
	Budget
	Spent      Money `json:"spent"`
	Remaining  Money `json:"remaining"`
	Percentage int64 `json:"percentage"`
}

// BudgetReport summarizes every budget for one month.
type BudgetReport struct {
	Month      string         `json:"month"`
	Budgets    []BudgetStatus `json:"budgets"`
	Total      Money          `json:"total"`
	Spent      Money          `json:"spent"`
	Remaining  Money          `json:"remaining"`
	Percentage int64          `json:"percentage"`
}

// SavingsOverview totals all savings goals.
type SavingsOverview struct {
	Target   Money `json:"target"`
	Current  Money `json:"current"`
	Progress int64 `json:"progress"`
}

// DebtOverview totals active and paid-off debts.
type DebtOverview struct {
	Active    int   `json:"active"`
	PaidOff   int   `json:"paidOff"`
	Remaining Money `json:"remaining"`
	Original  Money `json:"original"`
	Cleared   Money `json:"cleared"`
	Progress  int64 `json:"progress"`
}

// inMonth reports whether tx is dated in the given month.
func inMonth(tx Transaction, year int, month time.Month) bool {
	return tx.Date.Year() == year && tx.Date.Month() == month
}

// BudgetProgress computes spending against each budget in the month identified by label.
func BudgetProgress(l *Ledger, label string) (BudgetReport, error) {
	year, month, err := ParseMonthLabel(label)
	if err != nil {
		return BudgetReport{}, err
	}
	report := BudgetReport{Month: label, Budgets: make([]BudgetStatus, 0, len(l.Budgets))}
	for _, b := range l.Budgets {
		var spent Money
		for _, tx := range l.Transactions {
			if tx.Type == Expense && SameName(tx.Category, b.Category) && inMonth(tx, year, month) {
				spent = spent.Add(tx.Amount)
			}
		}
		report.Budgets = append(report.Budgets, BudgetStatus{
			Budget:     b,
			Spent:      spent,
			Remaining:  maxMoney(b.Amount.Sub(spent), Money{}),
			Percentage: cappedPercent(spent, b.Amount),
		})
		report.Total = report.Total.Add(b.Amount)
		report.Spent = report.Spent.Add(spent)
	}
	report.Remaining = maxMoney(report.Total.Sub(report.Spent), Money{})
	report.Percentage = cappedPercent(report.Spent, report.Total)
	return report, nil
}

// SpendingByCategory totals expenses per category in the month identified by label,
// largest first.
func SpendingByCategory(l *Ledger, label string) ([]CategoryAmount, error) {
	year, month, err := ParseMonthLabel(label)
	if err != nil {
		return nil, err
	}
	var out []CategoryAmount
	index := map[string]int{}
	for _, tx := range l.Transactions {
		if tx.Type != Expense || !inMonth(tx, year, month) {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(tx.Category))
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, CategoryAmount{Name: tx.Category, Color: categoryColor(l, tx.Category)})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.Cents > out[j].Amount.Cents })
	return out, nil
}

// Savings totals the ledger's goals.
func Savings(l *Ledger) SavingsOverview {
	var o SavingsOverview
	for _, g := range l.SavingsGoals {
		o.Target = o.Target.Add(g.TargetAmount)
		o.Current = o.Current.Add(g.CurrentAmount)
	}
	o.Progress = Percent(o.Current, o.Target)
	return o
}

// Debts totals the ledger's debts. Progress covers active debts only.
func Debts(l *Ledger) DebtOverview {
	var o DebtOverview
	for _, d := range l.Debts {
		if d.IsCompleted {
			o.PaidOff++
			o.Cleared = o.Cleared.Add(d.TotalAmount)
			continue
		}
		o.Active++
		o.Remaining = o.Remaining.Add(d.RemainingAmount)
		o.Original = o.Original.Add(d.TotalAmount)
	}
	o.Progress = Percent(o.Original.Sub(o.Remaining), o.Original)
	return o
}

// RecentTransactions returns up to n transactions, newest first.
func RecentTransactions(l *Ledger, n int) []Transaction {
	out := append([]Transaction{}, l.Transactions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// AvailableBudgetCategories lists expense categories that have no budget yet.
func AvailableBudgetCategories(l *Ledger) []Category {
	var out []Category
	for _, c := range l.Categories {
		if c.Type != Expense {
			continue
		}
		budgeted := false
		for _, b := range l.Budgets {
			if SameName(b.Category, c.Name) {
				budgeted = true
				break
			}
		}
		if !budgeted {
			out = append(out, c)
		}
	}
	return out
}

// PercentChange is the rounded change from previous to current; 0 without a previous value.
func PercentChange(current, previous int64) int64 {
	if previous == 0 {
		return 0
	}
	return int64(math.Round(float64(current-previous) / float64(previous) * 100))
}

// Percent is round(part/whole*100), 0 when whole is not positive.
func Percent(part, whole Money) int64 {
	if whole.Cents <= 0 {
		return 0
	}
	return part.Decimal().Mul(hundred).Div(whole.Decimal()).Add(half).Floor().IntPart()
}

func cappedPercent(part, whole Money) int64 {
	p := Percent(part, whole)
	if p > 100 {
		return 100
	}
	return p
}

func maxMoney(a, b Money) Money {
	if a.Cents > b.Cents {
		return a
	}
	return b
}

func categoryColor(l *Ledger, name string) string {
	for _, c := range l.Categories {
		if SameName(c.Name, name) {
			return c.Color
		}
	}
	return "#8884d8"
}
