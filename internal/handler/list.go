package handler

import (
	"net/http"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/model"
)

// listResponse is the JSON envelope for the collection endpoint.
type listResponse struct {
	ShoppingList []model.Item `json:"shoppingList"`
}

// handleListItems handles GET /shopping.
func (h *Handler) handleListItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parsePagination(r, h.opts.DefaultPageSize, h.opts.MaxPageSize)

		items, err := h.store.List(r.Context(), p.Offset(), p.Size)
		if err != nil {
			h.writeStoreError(w, r, err, "list items")
			return
		}
		if items == nil {
			items = []model.Item{}
		}

		writeJSON(w, http.StatusOK, listResponse{ShoppingList: items})
	}
}

// handleClearItems handles DELETE /shopping.
func (h *Handler) handleClearItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Clear(r.Context()); err != nil {
			h.writeStoreError(w, r, err, "clear items")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// parsePagination extracts the page and size query params from the request.
func parsePagination(r *http.Request, defaultSize, maxSize int) model.Pagination {
	q := r.URL.Query()
	return model.ParsePagination(q.Get("page"), q.Get("size"), defaultSize, maxSize)
}
