package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"logolate/go_backend/internal/domain/cart"
)

const sessionHeader = "X-Cart-Session"

type cartView struct {
	SessionID  string      `json:"sessionId"`
	Lines      []cart.Line `json:"lines"`
	TotalUnits int         `json:"totalUnits"`
}

func newCartView(sessionID string, s cart.Snapshot) cartView {
	lines := s.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return cartView{SessionID: sessionID, Lines: lines, TotalUnits: s.TotalUnits}
}

// session resolves the cart session of the request, minting one when the
// client has none. EventSource cannot send headers, so ?session= also works.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (string, *cart.Store) {
	id := strings.TrimSpace(r.Header.Get(sessionHeader))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("session"))
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	w.Header().Set(sessionHeader, id)
	return id, h.Carts.Get(id)
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	id, store := h.session(w, r)
	writeJSON(w, http.StatusOK, newCartView(id, store.Snapshot()))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handlers) AddCartItem(w http.ResponseWriter, r *http.Request) {
	id, store := h.session(w, r)

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required", nil)
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative", nil)
		return
	}

	p, err := h.Backend.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.backendFailure(w, "product lookup", err)
		return
	}
	if !p.Active {
		writeError(w, http.StatusConflict, "product is not available", nil)
		return
	}
	store.Add(p, req.Quantity)
	h.Log.Debug("cart item added", zap.String("session", id), zap.String("product_id", p.Key()))
	writeJSON(w, http.StatusOK, newCartView(id, store.Snapshot()))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, store := h.session(w, r)

	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be greater than zero", nil)
		return
	}
	err := store.SetQuantity(chi.URLParam(r, "id"), req.Quantity)
	if errors.Is(err, cart.ErrLineNotFound) {
		writeError(w, http.StatusNotFound, err.Error(), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(id, store.Snapshot()))
}

func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, store := h.session(w, r)
	store.Remove(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, newCartView(id, store.Snapshot()))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, store := h.session(w, r)
	store.Clear()
	writeJSON(w, http.StatusOK, newCartView(id, store.Snapshot()))
}

func (h *Handlers) ValidateCartMinimums(w http.ResponseWriter, r *http.Request) {
	id, store := h.session(w, r)
	adjusted := store.ValidateMinimums()
	writeJSON(w, http.StatusOK, map[string]any{
		"adjusted": adjusted,
		"cart":     newCartView(id, store.Snapshot()),
	})
}

const sseHeartbeat = 25 * time.Second

// CartEvents streams cart snapshots as server-sent events until the client leaves.
func (h *Handlers) CartEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}
	id, store := h.session(w, r)

	// keeps only the latest snapshot; publishers never block on a slow client
	updates := make(chan cart.Snapshot, 1)
	unsubscribe := store.Subscribe(func(s cart.Snapshot) {
		select {
		case <-updates:
		default:
		}
		updates <- s
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// each heartbeat also keeps the session alive while the stream is open
	interval := sseHeartbeat
	if half := h.Carts.IdleTTL() / 2; half > 0 && half < interval {
		interval = half
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if cur, ok := h.Carts.Lookup(id); !ok || cur != store {
				h.Log.Info("cart session ended, closing event stream", zap.String("session", id))
				return
			}
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case s := <-updates:
			body, err := json.Marshal(newCartView(id, s))
			if err != nil {
				h.Log.Error("encode cart event", zap.Error(err))
				return
			}
			fmt.Fprintf(w, "event: cart\ndata: %s\n\n", body)
			flusher.Flush()
		}
	}
}
