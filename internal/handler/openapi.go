package handler

import (
	"log/slog"
	"net/http"
)

func (h *Handler) handleOpenAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.opts.OpenAPI.YAML()
		if err != nil {
			h.logger.ErrorContext(r.Context(), "failed to generate OpenAPI", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to generate OpenAPI")
			return
		}

		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
	}
}
