package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/invoice-extractor/internal/extraction"
)

// Extractor turns a decoded document into an extraction result
type Extractor interface {
	Extract(ctx context.Context, document []byte, contentType, instructions string) (*extraction.Result, error)
}

type Handler struct {
	extractor    Extractor
	maxBodyBytes int64
}

// New returns a Handler sharing one extractor across all requests
func New(extractor Extractor, maxBodyBytes int64) *Handler {
	return &Handler{
		extractor:    extractor,
		maxBodyBytes: maxBodyBytes,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type extractResponse struct {
	Success bool               `json:"success"`
	Data    *extraction.Result `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		slog.Error("Unable to write JSON response", "err", err)
	}
}

// writeError answers a client input problem with {"error": ...}
func (h *Handler) writeError(w http.ResponseWriter, err *extraction.ClientInputError) {
	if err.Status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", http.MethodPost)
	}
	h.writeJSON(w, err.Status, errorResponse{Error: err.Message})
}

// writeFailure answers an internal failure with {"success": false, "error": ...}
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusInternalServerError, extractResponse{Success: false, Error: err.Error()})
}
