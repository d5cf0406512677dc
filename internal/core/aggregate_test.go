package core

import (
	"testing"
)

func tx(date Date, cents int64, typ EntryType) Transaction {
	return Transaction{Date: date, Amount: Cents(cents), Category: "c", Type: typ}
}

func TestRecomputeScenario(t *testing.T) {
	txs := []Transaction{
		tx(NewDate(2024, 3, 1), 100000, Income),
		tx(NewDate(2024, 3, 15), 40000, Expense),
		tx(NewDate(2024, 4, 1), 50000, Income),
	}
	months := Recompute(txs, 2024)
	if len(months) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(months))
	}

	march := months[2]
	if march.Month != "March 2024" || march.Income.Cents != 100000 || march.Expenses.Cents != 40000 ||
		march.Balance.Cents != 60000 || march.SavingsRate != 60 {
		t.Fatalf("unexpected March bucket: %+v", march)
	}
	april := months[3]
	if april.Month != "April 2024" || april.Income.Cents != 50000 || april.Expenses.Cents != 0 ||
		april.Balance.Cents != 50000 || april.SavingsRate != 100 {
		t.Fatalf("unexpected April bucket: %+v", april)
	}
	for i, md := range months {
		if i == 2 || i == 3 {
			continue
		}
		if md.Income.Cents != 0 || md.Expenses.Cents != 0 || md.Balance.Cents != 0 || md.SavingsRate != 0 {
			t.Fatalf("bucket %d should be zero: %+v", i, md)
		}
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	txs := []Transaction{
		tx(NewDate(2024, 1, 10), 333, Income),
		tx(NewDate(2024, 1, 11), 111, Expense),
		tx(NewDate(2024, 7, 4), 999, Expense),
	}
	first := Recompute(txs, 2024)
	second := Recompute(txs, 2024)
	if !MonthlyEqual(first, second) {
		t.Fatalf("recompute is not idempotent:\n%v\n%v", first, second)
	}
}

func TestRecomputeIgnoresOtherYears(t *testing.T) {
	txs := []Transaction{
		tx(NewDate(2023, 12, 31), 5000, Income),
		tx(NewDate(2025, 1, 1), 5000, Expense),
	}
	if !MonthlyEqual(Recompute(txs, 2024), EmptyMonths(2024)) {
		t.Fatal("transactions outside the year must be ignored")
	}
}

func TestSavingsRateRounding(t *testing.T) {
	cases := []struct {
		income, balance int64
		want            int64
	}{
		{0, -500, 0},         // no income
		{1000, 1000, 100},    // everything saved
		{800, 100, 13},       // 12.5 rounds up
		{800, -100, -12},     // -12.5 rounds toward +inf
		{300, 100, 33},       // 33.33
		{300, 200, 67},       // 66.67
		{1000, -3000, -300},  // spending beyond income
	}
	for _, tc := range cases {
		if got := SavingsRate(Cents(tc.income), Cents(tc.balance)); got != tc.want {
			t.Fatalf("income=%d balance=%d: expected %d, got %d", tc.income, tc.balance, tc.want, got)
		}
	}
}

func TestMonthlyEqual(t *testing.T) {
	a := EmptyMonths(2024)
	b := EmptyMonths(2024)
	if !MonthlyEqual(a, b) {
		t.Fatal("identical rollups must be equal")
	}
	b[5].Income = Cents(1)
	if MonthlyEqual(a, b) {
		t.Fatal("different rollups must not be equal")
	}
	if MonthlyEqual(a, a[:11]) {
		t.Fatal("different lengths must not be equal")
	}
}
