package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeStoreError maps a store or validation error to its HTTP status.
// Unexpected errors are logged and reported without detail.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, model.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "store operation failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}
