package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"logolate/go_backend/internal/infra/backend"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string, details any) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// decodeJSON reads a bounded JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

// backendFailure maps a backend error onto the response. 4xx answers are
// passed through; anything else is a bad gateway.
func (h *Handlers) backendFailure(w http.ResponseWriter, op string, err error) {
	var serr *backend.StatusError
	switch {
	case errors.Is(err, backend.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", nil)
	case errors.As(err, &serr) && serr.Status >= 400 && serr.Status < 500:
		writeError(w, serr.Status, op+" rejected by backend", serr.Body)
	default:
		h.Log.Error("backend call failed", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusBadGateway, op+" failed", nil)
	}
}
