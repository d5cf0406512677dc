package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

const (
	SourceSavings SourceKind = "savings"
	SourceDebt    SourceKind = "debt"
)

// Reserved categories of synthetic transactions.
const (
	SavingsCategory     = "Savings"
	DebtPaymentCategory = "Debt Payment"
)

const dateLayout = "2006-01-02"

type (
	EntryType  string
	SourceKind string

	// Date is a calendar date without time of day, always UTC midnight.
	Date struct {
		time.Time
	}

	// Source links a synthetic transaction back to the goal or debt that produced it.
	Source struct {
		Kind SourceKind `json:"kind"`
		ID   string     `json:"id"`
	}

	Transaction struct {
		ID          string    `json:"id"`
		Date        Date      `json:"date"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Type        EntryType `json:"type"`
		Source      *Source   `json:"source,omitempty"`
	}

	Budget struct {
		ID       string `json:"id"`
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
	}

	SavingsGoal struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		TargetAmount  Money  `json:"targetAmount"`
		CurrentAmount Money  `json:"currentAmount"`
		Deadline      *Date  `json:"deadline,omitempty"`
		Icon          string `json:"icon,omitempty"`
	}

	Debt struct {
		ID              string  `json:"id"`
		Name            string  `json:"name"`
		TotalAmount     Money   `json:"totalAmount"`
		RemainingAmount Money   `json:"remainingAmount"`
		InterestRate    float64 `json:"interestRate"`
		MinimumPayment  Money   `json:"minimumPayment"`
		DueDate         *Date   `json:"dueDate,omitempty"`
		IsCompleted     bool    `json:"isCompleted"`
	}

	Category struct {
		ID    string    `json:"id"`
		Name  string    `json:"name"`
		Color string    `json:"color"`
		Icon  string    `json:"icon,omitempty"`
		Type  EntryType `json:"type"`
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return b.Amount.Validate()
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return &ValidationError{Field: "targetAmount", Reason: "must be greater than zero"}
	}
	if g.CurrentAmount.Cents < 0 {
		return &ValidationError{Field: "currentAmount", Reason: "cannot be negative"}
	}
	if g.CurrentAmount.Cents > g.TargetAmount.Cents {
		return &ValidationError{Field: "currentAmount", Reason: "cannot exceed the target amount"}
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if err := d.TotalAmount.Validate(); err != nil {
		return &ValidationError{Field: "totalAmount", Reason: "must be greater than zero"}
	}
	if d.RemainingAmount.Cents < 0 || d.RemainingAmount.Cents > d.TotalAmount.Cents {
		return &ValidationError{Field: "remainingAmount", Reason: "must be between zero and the total amount"}
	}
	if d.InterestRate < 0 {
		return &ValidationError{Field: "interestRate", Reason: "cannot be negative"}
	}
	if err := d.MinimumPayment.Validate(); err != nil {
		return &ValidationError{Field: "minimumPayment", Reason: "must be greater than zero"}
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// SameName compares category names the way every uniqueness and reference check does.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
