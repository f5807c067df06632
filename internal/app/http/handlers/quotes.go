package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"logolate/go_backend/internal/domain/cart"
	"logolate/go_backend/internal/domain/quote"
	"logolate/go_backend/internal/infra/backend"
)

type clientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Company string `json:"company"`
}

type quoteRequest struct {
	Client           clientInput `json:"client"`
	Lines            []cart.Line `json:"lines"`
	Notes            string      `json:"notes"`
	CompanyLogo      string      `json:"companyLogo"`
	AcceptsMarketing bool        `json:"acceptsMarketing"`
	ExpiresAt        *time.Time  `json:"expiresAt"`
}

// linesFor returns the explicit lines of the request, or the session cart's.
func linesFor(req quoteRequest, store *cart.Store) (lines []cart.Line, fromCart bool) {
	if len(req.Lines) > 0 {
		return req.Lines, false
	}
	return store.Lines(), true
}

func (h *Handlers) ValidateQuote(w http.ResponseWriter, r *http.Request) {
	_, store := h.session(w, r)

	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	lines, _ := linesFor(req, store)
	msgs := quote.Validate(lines)
	if msgs == nil {
		msgs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": len(msgs) == 0, "errors": msgs})
}

func (h *Handlers) CreateQuote(w http.ResponseWriter, r *http.Request) {
	id, store := h.session(w, r)

	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	lines, fromCart := linesFor(req, store)

	res, err := h.Quotes.Assemble(r.Context(), quote.Request{
		Client: quote.Client{
			Name:    req.Client.Name,
			Email:   req.Client.Email,
			Phone:   req.Client.Phone,
			Address: req.Client.Address,
			Company: req.Client.Company,
		},
		Lines:            lines,
		Notes:            req.Notes,
		CompanyLogo:      req.CompanyLogo,
		AcceptsMarketing: req.AcceptsMarketing,
		ExpiresAt:        req.ExpiresAt,
	})

	var verr *quote.ValidationError
	var serr *quote.SubmissionError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, "quote request is not valid", verr.Messages)
		return
	case errors.As(err, &serr):
		var berr *backend.StatusError
		if errors.As(serr, &berr) && berr.Status >= 400 && berr.Status < 500 {
			writeError(w, http.StatusBadRequest, "quote rejected by backend", berr.Body)
			return
		}
		writeError(w, http.StatusBadGateway, "quote could not be submitted", nil)
		return
	case err != nil:
		h.Log.Error("quote assembly failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "quote failed", nil)
		return
	}

	if fromCart {
		store.RemoveLines(lines)
	}

	priceWarnings := make([]string, 0, len(res.PriceFailures))
	for _, f := range res.PriceFailures {
		priceWarnings = append(priceWarnings, f.ProductID)
	}
	h.Log.Info("quote submitted",
		zap.String("session", id),
		zap.String("quote_id", res.Quote.ID),
		zap.Bool("notifications_sent", res.Notifications.AllSent()))

	writeJSON(w, http.StatusCreated, map[string]any{
		"quote":              res.Quote,
		"stage":              res.Stage,
		"notifications":      res.Notifications,
		"unpricedProductIds": priceWarnings,
	})
}
