package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/model"
)

const maxBodyBytes = 1 << 20 // 1 MB limit

// handleCreateItem handles POST /shopping.
func (h *Handler) handleCreateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := h.readItem(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		stored, _, err := h.store.Upsert(r.Context(), item, h.opts.UpsertMode)
		if err != nil {
			h.writeStoreError(w, r, err, "store item")
			return
		}

		writeJSON(w, http.StatusCreated, stored)
	}
}

// handleGetItem handles GET /shopping/{name}.
func (h *Handler) handleGetItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := h.store.Get(r.Context(), r.PathValue("name"))
		if err != nil {
			h.writeStoreError(w, r, err, "get item")
			return
		}

		writeJSON(w, http.StatusOK, item)
	}
}

// handleUpdateItem handles PUT /shopping/{name}.
func (h *Handler) handleUpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		item, err := h.readItem(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Verify name in body matches URL
		if item.Name != name {
			writeError(w, http.StatusBadRequest, "name in body does not match URL")
			return
		}

		updated, err := h.store.Update(r.Context(), item)
		if err != nil {
			h.writeStoreError(w, r, err, "update item")
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

// handleDeleteItem handles DELETE /shopping/{name}.
func (h *Handler) handleDeleteItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Delete(r.Context(), r.PathValue("name")); err != nil {
			h.writeStoreError(w, r, err, "delete item")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// readItem reads and validates the request body as an Item.
func (h *Handler) readItem(w http.ResponseWriter, r *http.Request) (model.Item, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return model.Item{}, fmt.Errorf("%w: failed to read request body", model.ErrInvalidPayload)
	}
	return h.validator.ParseItem(body)
}
