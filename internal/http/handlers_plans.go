package http

import (
	"fmt"
	"net/http"

	"saga/internal/core"
	"saga/internal/log"
)

// Budgets

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.snapshot().Budgets).Write(w)
}

// handleBudgetProgress reports spending against budgets; month defaults to the selected one.
func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	report, err := s.ledger.BudgetProgress(r.URL.Query().Get("month"))
	if err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	NewJSONResponse().Data(report).Write(w)
}

func (s *Server) handleAvailableBudgetCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.ledger.AvailableBudgetCategories()
	if cats == nil {
		cats = []core.Category{}
	}
	NewJSONResponse().Data(cats).Write(w)
}

func (s *Server) handleAddBudget(w http.ResponseWriter, r *http.Request) {
	var in budgetInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	b, err := s.ledger.AddBudget(r.Context(), in.budget())
	respondMutation(w, r, http.StatusCreated, b, err, log.OpCreate, "budget", b.ID,
		fmt.Sprintf("Budget for %s set to %s", b.Category, b.Amount.Display()))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in budgetInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	b, err := s.ledger.UpdateBudget(r.Context(), id, in.budget())
	respondMutation(w, r, http.StatusOK, b, err, log.OpUpdate, "budget", id, "Budget updated")
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.ledger.DeleteBudget(r.Context(), id)
	respondMutation(w, r, http.StatusOK, map[string]string{"id": id}, err, log.OpDelete, "budget", id, "Budget deleted")
}

// Savings goals

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.snapshot().SavingsGoals).Write(w)
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var in goalInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	g, err := s.ledger.AddSavingsGoal(r.Context(), in.goal())
	respondMutation(w, r, http.StatusCreated, g, err, log.OpCreate, "savings goal", g.ID,
		fmt.Sprintf("Savings goal %q created", g.Name))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in goalInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	g, err := s.ledger.UpdateSavingsGoal(r.Context(), id, in.goal())
	respondMutation(w, r, http.StatusOK, g, err, log.OpUpdate, "savings goal", id, "Savings goal updated")
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.ledger.DeleteSavingsGoal(r.Context(), id)
	respondMutation(w, r, http.StatusOK, map[string]string{"id": id}, err, log.OpDelete, "savings goal", id, "Savings goal deleted")
}

type contributionResponse struct {
	Goal        core.SavingsGoal `json:"goal"`
	Transaction core.Transaction `json:"transaction"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in amountInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	g, tx, err := s.ledger.ContributeSavings(r.Context(), id, in.Amount)
	respondMutation(w, r, http.StatusCreated, contributionResponse{Goal: g, Transaction: tx}, err,
		log.OpUpdate, "savings goal", id,
		fmt.Sprintf("Added %s to %s", in.Amount.Display(), g.Name))
}

// Debts

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.snapshot().Debts).Write(w)
}

func (s *Server) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	var in debtInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	d, err := s.ledger.AddDebt(r.Context(), in.debt())
	respondMutation(w, r, http.StatusCreated, d, err, log.OpCreate, "debt", d.ID,
		fmt.Sprintf("Debt %q added", d.Name))
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in debtInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	d, err := s.ledger.UpdateDebt(r.Context(), id, in.debt())
	respondMutation(w, r, http.StatusOK, d, err, log.OpUpdate, "debt", id, "Debt updated")
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.ledger.DeleteDebt(r.Context(), id)
	respondMutation(w, r, http.StatusOK, map[string]string{"id": id}, err, log.OpDelete, "debt", id, "Debt deleted")
}

type paymentResponse struct {
	Debt        core.Debt        `json:"debt"`
	Transaction core.Transaction `json:"transaction"`
}

func (s *Server) handleDebtPayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in amountInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	d, tx, err := s.ledger.MakeDebtPayment(r.Context(), id, in.Amount)
	msg := fmt.Sprintf("Payment of %s made to %s", in.Amount.Display(), d.Name)
	if d.IsCompleted {
		msg = fmt.Sprintf("%s is fully paid off", d.Name)
	}
	respondMutation(w, r, http.StatusCreated, paymentResponse{Debt: d, Transaction: tx}, err,
		log.OpUpdate, "debt", id, msg)
}

func (s *Server) handleCompleteDebt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	d, err := s.ledger.MarkDebtComplete(r.Context(), id)
	respondMutation(w, r, http.StatusOK, d, err, log.OpUpdate, "debt", id,
		fmt.Sprintf("%s marked as paid off", d.Name))
}

// Categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.snapshot().Categories
	if t := core.EntryType(r.URL.Query().Get("type")); t != "" {
		if !t.Valid() {
			ErrorResponse(core.ErrInvalidType).Write(w)
			return
		}
		filtered := []core.Category{}
		for _, c := range cats {
			if c.Type == t {
				filtered = append(filtered, c)
			}
		}
		cats = filtered
	}
	NewJSONResponse().Data(cats).Write(w)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	c, err := s.ledger.AddCategory(r.Context(), in.category())
	respondMutation(w, r, http.StatusCreated, c, err, log.OpCreate, "category", c.ID,
		fmt.Sprintf("Category %q added", c.Name))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	c, err := s.ledger.UpdateCategory(r.Context(), id, in.category())
	respondMutation(w, r, http.StatusOK, c, err, log.OpUpdate, "category", id, "Category updated")
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.ledger.DeleteCategory(r.Context(), id)
	respondMutation(w, r, http.StatusOK, map[string]string{"id": id}, err, log.OpDelete, "category", id, "Category deleted")
}

// snapshot is the current ledger, or an empty one before the first load.
func (s *Server) snapshot() *core.Ledger {
	if l := s.ledger.Ledger(); l != nil {
		return l
	}
	empty := &core.Ledger{}
	empty.Normalize()
	return empty
}
