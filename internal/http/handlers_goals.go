package http

import (
	"context"
	"net/http"

	"finly/internal/core"
	"finly/internal/log"
)

type movementRequest struct {
	Amount core.Money `json:"amount"`
	Notes  string     `json:"notes"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	views, err := s.ledger.GoalViews(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in core.GoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	in.Name = sanitizeInput(in.Name)
	goal, err := s.ledger.CreateGoal(r.Context(), in)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var upd core.GoalUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if upd.Name != nil {
		name := sanitizeInput(*upd.Name)
		upd.Name = &name
	}
	goal, err := s.ledger.UpdateGoal(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleDeactivateGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeactivateGoal(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, log.OpDeactivate, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.ledger.GoalProgress(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleMovement(w, r, log.OpDeposit, s.ledger.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleMovement(w, r, log.OpWithdraw, s.ledger.Withdraw)
}

// handleMovement validates the amount here; the ledger records whatever it
// is handed.
func (s *Server) handleMovement(w http.ResponseWriter, r *http.Request, op string,
	move func(ctx context.Context, goalID string, amount core.Money, notes string) (core.Transaction, error)) {
	var req movementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, op, err)
		return
	}
	if err := req.Amount.Validate(); err != nil {
		s.writeError(w, r, op, err)
		return
	}
	tx, err := move(r.Context(), r.PathValue("id"), req.Amount, sanitizeInput(req.Notes))
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}
