package http

import (
	"net/http"

	"finly/internal/banks"
	"finly/internal/chat"
	"finly/internal/log"
)

type activeBanksRequest struct {
	BankIDs []string `json:"bank_ids"`
}

type chatRequest struct {
	History []chat.Message `json:"history"`
	Message string         `json:"message"`
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.notes.List(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Dismiss(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleBanks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, banks.All())
}

func (s *Server) handleActiveBanks(w http.ResponseWriter, r *http.Request) {
	ids, err := s.ledger.ActiveBanks(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, activeBanksRequest{BankIDs: ids})
}

func (s *Server) handleSetActiveBanks(w http.ResponseWriter, r *http.Request) {
	var req activeBanksRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if req.BankIDs == nil {
		req.BankIDs = []string{}
	}
	if err := s.ledger.SetActiveBanks(r.Context(), req.BankIDs); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// handleChat always answers 200 once the message is non-empty; advisor
// failures arrive as the fallback reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "chat", err)
		return
	}
	reply, err := s.advisor.Ask(r.Context(), req.History, sanitizeInput(req.Message))
	if err != nil {
		s.writeError(w, r, "chat", err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
