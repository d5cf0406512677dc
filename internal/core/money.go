// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Decimal strings and JSON numbers are
// converted with shopspring/decimal so no float rounding reaches the ledger.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount in minor currency units.
type Money struct {
	Cents int64
}

var displayPrinter = message.NewPrinter(language.AmericanEnglish)

var errNotDecimal = &ValidationError{Field: "amount", Reason: "is not a decimal number"}

// Cents is a shorthand constructor.
func Cents(c int64) Money { return Money{Cents: c} }

// parseDecimal reads a plain decimal string. Both dot (12.34) and comma
// (12,34) separators are accepted; exponents are not.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.ContainsAny(s, "eE") {
		return decimal.Decimal{}, errNotDecimal
	}
	if strings.Count(s, ",") > 1 || (strings.Contains(s, ",") && strings.Contains(s, ".")) {
		return decimal.Decimal{}, errNotDecimal
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Decimal{}, errNotDecimal
	}
	return d, nil
}

// MoneyFromDecimal rounds d to cents, half away from zero.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

// String renders the amount with exactly two fractional digits, e.g. "85.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Display renders the amount as US currency for notifications, e.g. "$1,234.50".
func (m Money) Display() string {
	sign, c := "", m.Cents
	if c < 0 {
		sign, c = "-", -c
	}
	return displayPrinter.Sprintf("%s$%d", sign, c/100) + fmt.Sprintf(".%02d", c%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string, which may
// use a comma separator.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	var (
		d   decimal.Decimal
		err error
	)
	if len(b) > 0 && b[0] == '"' {
		d, err = parseDecimal(strings.Trim(string(b), `"`))
	} else {
		d, err = decimal.NewFromString(string(b))
	}
	if err != nil {
		return errNotDecimal
	}
	*m = MoneyFromDecimal(d)
	return nil
}
