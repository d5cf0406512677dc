// Package http exposes the ledger as a JSON API.
//
// This file implements decoding of request bodies and query strings into the
// inputs of the ledger operations.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"saga/internal/core"
	"saga/internal/services"
)

const maxBodyBytes = 1 << 20

// requestError reports a body or query that could not be read at all.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// decodeJSON reads exactly one JSON object into dst. Unknown fields are rejected.
// Validation errors raised while decoding typed fields are returned as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return badRequest("Content-Type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var (
			verr    *core.ValidationError
			maxErr  *http.MaxBytesError
			syntax  *json.SyntaxError
			typeErr *json.UnmarshalTypeError
		)
		switch {
		case errors.As(err, &verr):
			return err
		case errors.As(err, &maxErr):
			return badRequest("Request body is too large")
		case errors.Is(err, io.EOF):
			return badRequest("Request body is empty")
		case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
			return badRequest("Request body is not valid JSON")
		case errors.As(err, &typeErr):
			return &core.ValidationError{Field: typeErr.Field, Reason: "has the wrong type"}
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return badRequest("Unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return badRequest("Request body could not be read")
		}
	}
	if dec.More() {
		return badRequest("Request body must contain a single JSON object")
	}
	return nil
}

type transactionInput struct {
	Date        core.Date      `json:"date"`
	Description string         `json:"description"`
	Amount      core.Money     `json:"amount"`
	Category    string         `json:"category"`
	Type        core.EntryType `json:"type"`
}

func (in transactionInput) transaction() core.Transaction {
	return core.Transaction{
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Category:    strings.TrimSpace(in.Category),
		Type:        in.Type,
	}
}

type budgetInput struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
}

func (in budgetInput) budget() core.Budget {
	return core.Budget{Category: strings.TrimSpace(in.Category), Amount: in.Amount}
}

type goalInput struct {
	Name          string     `json:"name"`
	TargetAmount  core.Money `json:"targetAmount"`
	CurrentAmount core.Money `json:"currentAmount"`
	Deadline      *core.Date `json:"deadline"`
	Icon          string     `json:"icon"`
}

func (in goalInput) goal() core.SavingsGoal {
	return core.SavingsGoal{
		Name:          strings.TrimSpace(in.Name),
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      nonZeroDate(in.Deadline),
		Icon:          in.Icon,
	}
}

type debtInput struct {
	Name            string      `json:"name"`
	TotalAmount     core.Money  `json:"totalAmount"`
	RemainingAmount *core.Money `json:"remainingAmount"`
	InterestRate    float64     `json:"interestRate"`
	MinimumPayment  core.Money  `json:"minimumPayment"`
	DueDate         *core.Date  `json:"dueDate"`
	IsCompleted     bool        `json:"isCompleted"`
}

// debt builds the entity; an omitted remaining amount means nothing is paid yet.
func (in debtInput) debt() core.Debt {
	remaining := in.TotalAmount
	if in.RemainingAmount != nil {
		remaining = *in.RemainingAmount
	}
	return core.Debt{
		Name:            strings.TrimSpace(in.Name),
		TotalAmount:     in.TotalAmount,
		RemainingAmount: remaining,
		InterestRate:    in.InterestRate,
		MinimumPayment:  in.MinimumPayment,
		DueDate:         nonZeroDate(in.DueDate),
		IsCompleted:     in.IsCompleted,
	}
}

type categoryInput struct {
	Name  string         `json:"name"`
	Color string         `json:"color"`
	Icon  string         `json:"icon"`
	Type  core.EntryType `json:"type"`
}

func (in categoryInput) category() core.Category {
	return core.Category{
		Name:  strings.TrimSpace(in.Name),
		Color: in.Color,
		Icon:  in.Icon,
		Type:  in.Type,
	}
}

type amountInput struct {
	Amount core.Money `json:"amount"`
}

type monthInput struct {
	Month string `json:"month"`
}

func nonZeroDate(d *core.Date) *core.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

// parseTransactionFilter reads month, type, category and q from the query string.
func parseTransactionFilter(q url.Values) services.TransactionFilter {
	return services.TransactionFilter{
		Month:    strings.TrimSpace(q.Get("month")),
		Type:     core.EntryType(strings.ToLower(strings.TrimSpace(q.Get("type")))),
		Category: strings.TrimSpace(q.Get("category")),
		Query:    strings.TrimSpace(q.Get("q")),
	}
}

// parseLimit reads a positive count from the query, falling back to def.
func parseLimit(q url.Values, name string, def, max int) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, &core.ValidationError{Field: name, Reason: "must be a positive number"}
	}
	if n > max {
		n = max
	}
	return n, nil
}
