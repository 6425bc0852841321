package http

import (
	"net/http"

	"finly/internal/core"
	"finly/internal/health"
	"finly/internal/log"
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := s.balance.GetOrLoad(keyBalance, func() (core.Balance, error) {
		return s.ledger.Balance(r.Context())
	})
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

func (s *Server) handleBalanceByBank(w http.ResponseWriter, r *http.Request) {
	byBank, err := s.ledger.BalanceByBank(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, byBank)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.ledger.Now())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	data, err := s.ledger.MonthlyData(r.Context(), params.Year, params.Month)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// handleCategoryReport serves the all-time per-category totals used by the
// dashboard pie charts. type defaults to expense.
func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	var (
		totals []core.CategoryAmount
		err    error
	)
	switch kind := r.URL.Query().Get("type"); kind {
	case "", string(core.ExpenseCategory):
		totals, err = s.ledger.CategoryExpenses(r.Context())
	case string(core.IncomeCategory):
		totals, err = s.ledger.CategoryIncome(r.Context())
	default:
		err = core.ErrInvalidType
	}
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleSavingsReport(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.ledger.Now())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	data, err := s.ledger.SavingsMonthlyData(r.Context(), params.Year, params.Month)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	result, err := s.score.GetOrLoad(keyHealth, func() (health.Result, error) {
		snap, err := s.ledger.Snapshot(r.Context())
		if err != nil {
			return health.Result{}, err
		}
		return health.Compute(snap), nil
	})
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
