package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"logolate/go_backend/internal/domain/catalog"
	"logolate/go_backend/internal/domain/quote"
	"logolate/go_backend/internal/infra/backend"
)

type productInput struct {
	Name        string  `json:"name"`
	Reference   string  `json:"reference"`
	Price       float64 `json:"price"`
	MinQuantity int     `json:"minQuantity"`
	CategoryID  string  `json:"categoryId"`
	ImageURL    string  `json:"imageUrl"`
	Description string  `json:"description"`
	IsNew       bool    `json:"isNew"`
	Active      *bool   `json:"active"`
}

func (in productInput) product() (catalog.Product, []string) {
	p := catalog.Product{
		Name:        strings.TrimSpace(in.Name),
		Reference:   strings.TrimSpace(in.Reference),
		Price:       in.Price,
		MinQuantity: in.MinQuantity,
		CategoryID:  strings.TrimSpace(in.CategoryID),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Description: strings.TrimSpace(in.Description),
		IsNew:       in.IsNew,
		Active:      in.Active == nil || *in.Active,
	}
	var msgs []string
	if p.Name == "" {
		msgs = append(msgs, "name is required")
	}
	if p.Reference == "" {
		msgs = append(msgs, "reference is required")
	}
	if p.Price < 0 {
		msgs = append(msgs, "price must not be negative")
	}
	if p.MinQuantity < 0 {
		msgs = append(msgs, "minQuantity must not be negative")
	}
	return p, msgs
}

func (h *Handlers) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	onlyNew, _ := strconv.ParseBool(q.Get("novedad"))
	products, err := h.Backend.ListProducts(r.Context(), catalog.ProductFilter{
		Category: q.Get("categoria"),
		OnlyNew:  onlyNew,
	})
	if err != nil {
		h.backendFailure(w, "list products", err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handlers) AdminGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Backend.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.backendFailure(w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	p, msgs := in.product()
	if len(msgs) > 0 {
		writeError(w, http.StatusUnprocessableEntity, "product is not valid", msgs)
		return
	}
	created, err := h.Backend.CreateProduct(r.Context(), p)
	if err != nil {
		h.backendFailure(w, "create product", err)
		return
	}
	h.Catalog.Invalidate(r.Context())
	h.Log.Info("product created", zap.String("product_id", created.Key()))
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	p, msgs := in.product()
	if len(msgs) > 0 {
		writeError(w, http.StatusUnprocessableEntity, "product is not valid", msgs)
		return
	}
	id := chi.URLParam(r, "id")
	updated, err := h.Backend.UpdateProduct(r.Context(), id, p)
	if err != nil {
		h.backendFailure(w, "update product", err)
		return
	}
	h.Catalog.Invalidate(r.Context())
	h.Log.Info("product updated", zap.String("product_id", id))
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Backend.DeleteProduct(r.Context(), id); err != nil {
		h.backendFailure(w, "delete product", err)
		return
	}
	h.Catalog.Invalidate(r.Context())
	h.Log.Info("product deleted", zap.String("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Backend.ListCategories(r.Context())
	if err != nil {
		h.backendFailure(w, "list categories", err)
		return
	}
	if cats == nil {
		cats = []catalog.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func decodeCategory(r *http.Request) (catalog.Category, error) {
	var c catalog.Category
	if err := decodeJSON(r, &c); err != nil {
		return c, err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.TrimSpace(c.Slug)
	return c, nil
}

func (h *Handlers) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCategory(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if c.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required", nil)
		return
	}
	created, err := h.Backend.CreateCategory(r.Context(), c)
	if err != nil {
		h.backendFailure(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) AdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCategory(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if c.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required", nil)
		return
	}
	updated, err := h.Backend.UpdateCategory(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		h.backendFailure(w, "update category", err)
		return
	}
	h.Catalog.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) AdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Backend.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.backendFailure(w, "delete category", err)
		return
	}
	h.Catalog.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AdminListBudgets(w http.ResponseWriter, r *http.Request) {
	status := quote.Status(strings.ToLower(r.URL.Query().Get("estado")))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status", string(status))
		return
	}
	budgets, err := h.Backend.ListBudgets(r.Context(), status)
	if err != nil {
		h.backendFailure(w, "list budgets", err)
		return
	}
	if budgets == nil {
		budgets = []quote.Quote{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (h *Handlers) AdminGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := h.Backend.GetBudget(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.backendFailure(w, "get budget", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) AdminUpdateBudgetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status quote.Status `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status", string(req.Status))
		return
	}
	id := chi.URLParam(r, "id")
	b, err := h.Backend.UpdateBudgetStatus(r.Context(), id, req.Status)
	if err != nil {
		h.backendFailure(w, "update budget status", err)
		return
	}
	h.Log.Info("budget status changed", zap.String("budget_id", id), zap.String("status", string(req.Status)))
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) AdminBudgetPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.Backend.GetBudget(r.Context(), id)
	if err != nil {
		h.backendFailure(w, "get budget", err)
		return
	}
	pdfBytes, err := h.PDF.Generate(b)
	if err != nil {
		h.Log.Error("budget pdf failed", zap.String("budget_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "pdf generation failed", nil)
		return
	}

	name := b.SequenceNumber
	if name == "" {
		name = b.ID
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="presupuesto-`+safeFilename(name)+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

func (h *Handlers) AdminGetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Backend.GeneralConfig(r.Context())
	if err != nil {
		h.backendFailure(w, "get configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handlers) AdminUpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cfg backend.GeneralConfig
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if len(cfg) == 0 {
		writeError(w, http.StatusBadRequest, "configuration body is empty", nil)
		return
	}
	updated, err := h.Backend.UpdateGeneralConfig(r.Context(), cfg)
	if err != nil {
		h.backendFailure(w, "update configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func safeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "sin-numero"
	}
	return b.String()
}
