package http

import (
	"net/http"

	"saga/internal/core"
	"saga/internal/log"
)

const (
	defaultRecent = 5
	maxRecent     = 100
)

// logChange records an applied mutation on the request-scoped logger.
func logChange(r *http.Request, op, kind, id string) {
	log.NewStructuredLogger(log.FromContext(r.Context())).LogLedgerChange(r.Context(), op, kind, id)
}

// logRejected records a mutation the ledger refused, at debug level.
func logRejected(r *http.Request, op, kind string, err error) {
	log.FromContext(r.Context()).DebugContext(r.Context(), "Ledger change rejected",
		log.FieldOperation, op, log.FieldEntity, kind, log.FieldError, err)
}

// respondMutation writes the outcome of a mutation and logs it.
func respondMutation(w http.ResponseWriter, r *http.Request, status int, data any, err error, op, kind, id, success string) {
	b := Result(status, data, err, success)
	if b.body.Error == nil {
		logChange(r, op, kind, id)
	} else {
		logRejected(r, op, kind, err)
	}
	b.Write(w)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	l := s.ledger.Ledger()
	if l == nil {
		ErrorResponse(&core.UnavailableError{Reason: "not loaded"}).Write(w)
		return
	}
	NewJSONResponse().Data(l).Write(w)
}

type summaryResponse struct {
	Month      string               `json:"month"`
	Current    *core.MonthlyData    `json:"current,omitempty"`
	Previous   *core.MonthlyData    `json:"previous,omitempty"`
	Navigation core.MonthNavigation `json:"navigation"`
	Savings    core.SavingsOverview `json:"savings"`
	Debts      core.DebtOverview    `json:"debts"`
	Recent     []core.Transaction   `json:"recent"`
}

// handleSummary returns the selected month's rollups and the headline totals.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	n, err := parseLimit(r.URL.Query(), "recent", defaultRecent, maxRecent)
	if err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	nav := s.ledger.MonthNavigation()
	resp := summaryResponse{
		Month:      nav.Selected,
		Navigation: nav,
		Savings:    s.ledger.SavingsOverview(),
		Debts:      s.ledger.DebtOverview(),
		Recent:     s.ledger.RecentTransactions(n),
	}
	if cur, ok := s.ledger.CurrentMonthSummary(); ok {
		resp.Current = &cur
	}
	if prev, ok := s.ledger.PreviousMonthSummary(); ok {
		resp.Previous = &prev
	}
	NewJSONResponse().Data(resp).Write(w)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.ledger.Overview()).Write(w)
}

func (s *Server) handleSetSelectedMonth(w http.ResponseWriter, r *http.Request) {
	var in monthInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	err := s.ledger.SetSelectedMonth(r.Context(), in.Month)
	respondMutation(w, r, http.StatusOK, s.ledger.MonthNavigation(), err, log.OpUpdate, "selected month", in.Month, "")
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.Reset(r.Context())
	if l == nil && err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	respondMutation(w, r, http.StatusOK, l, err, log.OpReset, "ledger", "", "All data has been reset")
}

func (s *Server) handleSpending(w http.ResponseWriter, r *http.Request) {
	spending, err := s.ledger.SpendingByCategory(r.URL.Query().Get("month"))
	if err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	if spending == nil {
		spending = []core.CategoryAmount{}
	}
	NewJSONResponse().Data(spending).Write(w)
}
