package http

import (
	"net/http"
	"strings"

	"finly/internal/core"
	"finly/internal/ledger"
	"finly/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.HistoryFilter{
		Month:    strings.TrimSpace(q.Get("month")),
		Type:     core.TransactionType(strings.TrimSpace(q.Get("type"))),
		Category: sanitizeInput(q.Get("category")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		s.writeError(w, r, log.OpList, core.ErrInvalidType)
		return
	}
	txs, err := s.ledger.History(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(w, r, &tx); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	tx.ID = ""
	tx.Category = sanitizeInput(tx.Category)
	tx.Notes = sanitizeInput(tx.Notes)
	tx.PartyName = sanitizeInput(tx.PartyName)

	saved, err := s.ledger.SaveTransaction(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTransactionMonths lists the YYYY-MM buckets that hold data, for
// the history filter.
func (s *Server) handleTransactionMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.ledger.HistoryMonths(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	list := s.ledger.Categories
	if r.URL.Query().Get("active") == "true" {
		list = s.ledger.ActiveCategories
	}
	cats, err := list(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}
