package core

// Ledger is the aggregate root of one installation's financial data.
// A Ledger value is a snapshot: code that changes it works on a Clone.
type Ledger struct {
	Transactions  []Transaction `json:"transactions"`
	Budgets       []Budget      `json:"budgets"`
	SavingsGoals  []SavingsGoal `json:"savingsGoals"`
	Debts         []Debt        `json:"debts"`
	Categories    []Category    `json:"categories"`
	MonthlyData   []MonthlyData `json:"monthlyData"`
	SelectedMonth string        `json:"selectedMonth"`
}

// NewLedger returns an empty ledger tracking year, with selected as the selected month.
func NewLedger(year int, selected string) *Ledger {
	return &Ledger{
		Transactions:  []Transaction{},
		Budgets:       []Budget{},
		SavingsGoals:  []SavingsGoal{},
		Debts:         []Debt{},
		Categories:    []Category{},
		MonthlyData:   EmptyMonths(year),
		SelectedMonth: selected,
	}
}

// Clone returns a deep copy of l.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return nil
	}
	out := &Ledger{
		Transactions:  make([]Transaction, len(l.Transactions)),
		Budgets:       append([]Budget{}, l.Budgets...),
		SavingsGoals:  make([]SavingsGoal, len(l.SavingsGoals)),
		Debts:         make([]Debt, len(l.Debts)),
		Categories:    append([]Category{}, l.Categories...),
		MonthlyData:   append([]MonthlyData{}, l.MonthlyData...),
		SelectedMonth: l.SelectedMonth,
	}
	for i, tx := range l.Transactions {
		if tx.Source != nil {
			src := *tx.Source
			tx.Source = &src
		}
		out.Transactions[i] = tx
	}
	for i, g := range l.SavingsGoals {
		g.Deadline = cloneDate(g.Deadline)
		out.SavingsGoals[i] = g
	}
	for i, d := range l.Debts {
		d.DueDate = cloneDate(d.DueDate)
		out.Debts[i] = d
	}
	return out
}

// Normalize replaces nil slices so the ledger always serializes with empty lists.
func (l *Ledger) Normalize() {
	if l.Transactions == nil {
		l.Transactions = []Transaction{}
	}
	if l.Budgets == nil {
		l.Budgets = []Budget{}
	}
	if l.SavingsGoals == nil {
		l.SavingsGoals = []SavingsGoal{}
	}
	if l.Debts == nil {
		l.Debts = []Debt{}
	}
	if l.Categories == nil {
		l.Categories = []Category{}
	}
	if l.MonthlyData == nil {
		l.MonthlyData = []MonthlyData{}
	}
}

// MonthSummary returns the rollup of the month identified by label.
func (l *Ledger) MonthSummary(label string) (MonthlyData, bool) {
	for _, md := range l.MonthlyData {
		if md.Month == label {
			return md, true
		}
	}
	return MonthlyData{}, false
}

// PreviousMonthSummary returns the rollup one position before label in the
// ordered months; absent for the first month.
func (l *Ledger) PreviousMonthSummary(label string) (MonthlyData, bool) {
	for i, md := range l.MonthlyData {
		if md.Month == label {
			if i == 0 {
				return MonthlyData{}, false
			}
			return l.MonthlyData[i-1], true
		}
	}
	return MonthlyData{}, false
}

// CategoryInUse reports whether any transaction or budget references name.
func (l *Ledger) CategoryInUse(name string) bool {
	for _, tx := range l.Transactions {
		if SameName(tx.Category, name) {
			return true
		}
	}
	for _, b := range l.Budgets {
		if SameName(b.Category, name) {
			return true
		}
	}
	return false
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
