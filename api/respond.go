package api

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/patternscope/patternscope/internal/workflow"
)

// errorResponse is the uniform error body. Fields is present only for
// validation failures.
type errorResponse struct {
	Error  string               `json:"error"`
	Fields workflow.FieldErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, errorResponse{Error: msg}, status)
}

// writeFieldErrors reports business-rule violations as 422 with per-field
// messages.
func writeFieldErrors(w http.ResponseWriter, msg string, fields workflow.FieldErrors) {
	writeJSON(w, errorResponse{Error: msg, Fields: fields}, http.StatusUnprocessableEntity)
}
