package core

import (
	"fmt"
	"time"
)

// DefaultCategories are installed into every new ledger.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat-1", Name: "Housing", Color: "#3B82F6", Icon: "home", Type: Expense},
		{ID: "cat-2", Name: "Food", Color: "#F97316", Icon: "utensils", Type: Expense},
		{ID: "cat-3", Name: "Transportation", Color: "#8B5CF6", Icon: "car", Type: Expense},
		{ID: "cat-4", Name: "Utilities", Color: "#10B981", Icon: "bolt", Type: Expense},
		{ID: "cat-5", Name: "Entertainment", Color: "#EC4899", Icon: "music", Type: Expense},
		{ID: "cat-6", Name: "Healthcare", Color: "#EF4444", Icon: "heart", Type: Expense},
		{ID: "cat-7", Name: "Education", Color: "#F59E0B", Icon: "book", Type: Expense},
		{ID: "cat-8", Name: "Clothing", Color: "#6366F1", Icon: "shirt", Type: Expense},
		{ID: "cat-9", Name: "Salary", Color: "#22C55E", Icon: "briefcase", Type: Income},
		{ID: "cat-10", Name: "Investments", Color: "#14B8A6", Icon: "trending-up", Type: Income},
		{ID: "cat-11", Name: "Gifts", Color: "#D946EF", Icon: "gift", Type: Income},
		{ID: "cat-12", Name: "Other Income", Color: "#0EA5E9", Icon: "plus-circle", Type: Income},
	}
}

// SeedLedger builds the ledger of a fresh installation. With demo set it is
// pre-populated with sample transactions, budgets, goals and debts dated
// relative to now.
func SeedLedger(now time.Time, demo bool) *Ledger {
	year := TrackedYear(now)
	l := NewLedger(year, MonthLabel(year, now.Month()))
	l.Categories = DefaultCategories()
	if !demo {
		return l
	}

	daysAgo := func(n int) Date { return DateOf(now.AddDate(0, 0, -n)) }
	l.Transactions = []Transaction{
		{ID: "tx-1", Date: daysAgo(5), Description: "Rent payment", Amount: Cents(120000), Category: "Housing", Type: Expense},
		{ID: "tx-2", Date: daysAgo(3), Description: "Grocery shopping", Amount: Cents(8550), Category: "Food", Type: Expense},
		{ID: "tx-3", Date: daysAgo(1), Description: "Monthly salary", Amount: Cents(320000), Category: "Salary", Type: Income},
		{ID: "tx-4", Date: daysAgo(7), Description: "Electricity bill", Amount: Cents(12075), Category: "Utilities", Type: Expense},
		{ID: "tx-5", Date: daysAgo(10), Description: "Investment dividend", Amount: Cents(25000), Category: "Investments", Type: Income},
	}
	l.Budgets = []Budget{
		{ID: "budget-1", Category: "Housing", Amount: Cents(130000)},
		{ID: "budget-2", Category: "Food", Amount: Cents(40000)},
		{ID: "budget-3", Category: "Transportation", Amount: Cents(20000)},
		{ID: "budget-4", Category: "Utilities", Amount: Cents(20000)},
		{ID: "budget-5", Category: "Entertainment", Amount: Cents(15000)},
	}
	vacation := DateOf(now.AddDate(0, 6, 0))
	l.SavingsGoals = []SavingsGoal{
		{ID: "savings-1", Name: "Emergency Fund", TargetAmount: Cents(1000000), CurrentAmount: Cents(350000), Icon: "shield"},
		{ID: "savings-2", Name: "Vacation", TargetAmount: Cents(250000), CurrentAmount: Cents(120000), Deadline: &vacation, Icon: "plane"},
	}
	due := DateOf(now.AddDate(0, 0, 15))
	l.Debts = []Debt{
		{ID: "debt-1", Name: "Credit Card", TotalAmount: Cents(250000), RemainingAmount: Cents(180000), InterestRate: 19.99, MinimumPayment: Cents(10000)},
		{ID: "debt-2", Name: "Student Loan", TotalAmount: Cents(1500000), RemainingAmount: Cents(850000), InterestRate: 4.5, MinimumPayment: Cents(20000), DueDate: &due},
	}
	l.MonthlyData = Recompute(l.Transactions, year)
	return l
}

// ContributionTransaction is the synthetic expense recorded for a savings contribution.
func ContributionTransaction(id string, goal SavingsGoal, amount Money, on Date) Transaction {
	return Transaction{
		ID:          id,
		Date:        on,
		Description: fmt.Sprintf("Contribution to %s", goal.Name),
		Amount:      amount,
		Category:    SavingsCategory,
		Type:        Expense,
		Source:      &Source{Kind: SourceSavings, ID: goal.ID},
	}
}

// PaymentTransaction is the synthetic expense recorded for a debt payment.
func PaymentTransaction(id string, debt Debt, amount Money, on Date) Transaction {
	return Transaction{
		ID:          id,
		Date:        on,
		Description: fmt.Sprintf("Payment to %s", debt.Name),
		Amount:      amount,
		Category:    DebtPaymentCategory,
		Type:        Expense,
		Source:      &Source{Kind: SourceDebt, ID: debt.ID},
	}
}
