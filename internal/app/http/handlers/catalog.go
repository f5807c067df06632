package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"logolate/go_backend/internal/domain/catalog"
)

func (h *Handlers) Carousel(w http.ResponseWriter, r *http.Request) {
	c := catalog.Carousel(chi.URLParam(r, "carousel"))
	products, err := h.Catalog.Carousel(r.Context(), c)
	if errors.Is(err, catalog.ErrUnknownCarousel) {
		writeError(w, http.StatusNotFound, err.Error(), nil)
		return
	}
	if err != nil {
		h.backendFailure(w, "carousel", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"carousel": c, "products": products})
}
