package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finly/internal/chat"
	"finly/internal/core"
	"finly/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a ledger error onto an HTTP status and its error_type tag.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, log.ErrorTypeValidation
	case core.IsValidation(err), errors.Is(err, chat.ErrEmptyInput):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation
	case core.IsNotFound(err):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, core.ErrDuplicateGoalName):
		return http.StatusConflict, log.ErrorTypeConflict
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal
	}
}

// writeError answers with {"error": ...}. Internal failures are logged and
// their detail is kept out of the response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, errType := statusFor(err)
	logger := log.FromContext(r.Context())
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err,
			"error_type", errType)
		msg = "internal error"
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, op,
			log.FieldError, err,
			"error_type", errType)
	}
	writeJSON(w, status, errorBody{Error: msg})
}
