package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyData is the derived rollup of one calendar month.
type MonthlyData struct {
	Month       string `json:"month"`
	Income      Money  `json:"income"`
	Expenses    Money  `json:"expenses"`
	Balance     Money  `json:"balance"`
	SavingsRate int64  `json:"savingsRate"`
}

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// Recompute folds transactions into 12 monthly buckets of year. Transactions
// dated outside year are ignored. The result depends only on the inputs.
func Recompute(transactions []Transaction, year int) []MonthlyData {
	months := EmptyMonths(year)
	for _, tx := range transactions {
		if tx.Date.Year() != year {
			continue
		}
		bucket := &months[int(tx.Date.Month())-1]
		switch tx.Type {
		case Income:
			bucket.Income = bucket.Income.Add(tx.Amount)
		case Expense:
			bucket.Expenses = bucket.Expenses.Add(tx.Amount)
		}
	}
	for i := range months {
		months[i].Balance = months[i].Income.Sub(months[i].Expenses)
		months[i].SavingsRate = SavingsRate(months[i].Income, months[i].Balance)
	}
	return months
}

// EmptyMonths returns the 12 zeroed buckets of year.
func EmptyMonths(year int) []MonthlyData {
	labels := MonthLabels(year)
	months := make([]MonthlyData, len(labels))
	for i, label := range labels {
		months[i] = MonthlyData{Month: label}
	}
	return months
}

// SavingsRate is round(balance / income * 100), rounding halves toward positive
// infinity, and 0 when there is no income.
func SavingsRate(income, balance Money) int64 {
	if income.Cents <= 0 {
		return 0
	}
	ratio := balance.Decimal().Mul(hundred).Div(income.Decimal())
	return ratio.Add(half).Floor().IntPart()
}

// MonthlyEqual reports whether two rollups are identical.
func MonthlyEqual(a, b []MonthlyData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TrackedYear is the year whose months the ledger aggregates.
func TrackedYear(now time.Time) int {
	return now.Year()
}
