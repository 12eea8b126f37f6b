package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yawwnann/fintrack/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Guard
// failures carry their structured detail so the client can act on them.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ife *core.InsufficientFundsError
	if errors.As(err, &ife) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":           "Insufficient balance",
			"accountBalance":  ife.Available,
			"requestedAmount": ife.Requested,
		})
		return
	}

	var gte *core.GoalTargetError
	if errors.As(err, &gte) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":           "Allocation exceeds goal target",
			"remainingTarget": gte.Remaining,
		})
		return
	}

	var status int
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, status, map[string]string{"error": "Internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			return err
		}
		return core.ErrInvalidInput
	}
	return nil
}
