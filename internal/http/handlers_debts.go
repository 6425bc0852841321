package http

import (
	"net/http"

	"finly/internal/core"
	"finly/internal/log"
)

type paymentRequest struct {
	Amount core.Money `json:"amount"`
	BankID string     `json:"bank_id"`
}

type paymentResponse struct {
	Debt        core.DebtRecord  `json:"debt"`
	Transaction core.Transaction `json:"transaction"`
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.ledger.Debts(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var in core.DebtInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	in.PartyName = sanitizeInput(in.PartyName)
	in.Notes = sanitizeInput(in.Notes)
	debt, err := s.ledger.SaveDebt(r.Context(), in)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, debt)
}

func (s *Server) handlePayDebt(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, log.OpPayment, err)
		return
	}
	debt, tx, err := s.ledger.PayDebt(r.Context(), r.PathValue("id"), req.Amount, req.BankID)
	if err != nil {
		s.writeError(w, r, log.OpPayment, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentResponse{Debt: debt, Transaction: tx})
}

func (s *Server) handleOverdueDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.ledger.OverdueDebts(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleUpcomingDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.ledger.UpcomingDueDates(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleDebtFreeProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.debtFree.GetOrLoad(keyDebtFree, func() (core.DebtFreeProgress, error) {
		return s.ledger.DebtFreeProgress(r.Context())
	})
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
