package http

import (
	"fmt"
	"net/http"

	"saga/internal/log"
)

// handleListTransactions filters by month, type, category and free text (q).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(parseTransactionFilter(r.URL.Query()))
	if err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	NewJSONResponse().Data(txs).Write(w)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	tx, err := s.ledger.AddTransaction(r.Context(), in.transaction())
	msg := fmt.Sprintf("%s of %s added", capitalizeType(string(tx.Type)), tx.Amount.Display())
	respondMutation(w, r, http.StatusCreated, tx, err, log.OpCreate, "transaction", tx.ID, msg)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in transactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		ErrorResponse(err).Write(w)
		return
	}
	tx, err := s.ledger.UpdateTransaction(r.Context(), id, in.transaction())
	respondMutation(w, r, http.StatusOK, tx, err, log.OpUpdate, "transaction", id, "Transaction updated")
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.ledger.DeleteTransaction(r.Context(), id)
	respondMutation(w, r, http.StatusOK, map[string]string{"id": id}, err, log.OpDelete, "transaction", id, "Transaction deleted")
}

func capitalizeType(t string) string {
	switch t {
	case "income":
		return "Income"
	case "expense":
		return "Expense"
	}
	return "Transaction"
}
