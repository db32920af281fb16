package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/document"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/extraction"
)

type extractRequest struct {
	FileBase64 string `json:"fileBase64"`
	MimeType   string `json:"mimeType"`
}

// HandleExtract extracts the invoice fields from a base64 encoded document.
//
//	POST {"fileBase64": "...", "mimeType": "application/pdf"}
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	logger := slog.With("request_id", requestID)

	logger.Info("Invoice request received", "method", r.Method, "remote_addr", r.RemoteAddr)

	request, inputErr := h.readRequest(w, r)
	if inputErr != nil {
		logger.Warn("Invoice request rejected", "status", inputErr.Status, "err", inputErr.Message)
		h.writeError(w, inputErr)
		return
	}
	logger.Info("Invoice request validated")

	mimeType := document.ResolveMIMEType(request.MimeType)
	data, err := document.Decode(request.FileBase64)
	if err != nil {
		h.fail(w, logger, fmt.Errorf("failed to decode fileBase64: %w", err))
		return
	}

	info, err := document.Inspect(data, mimeType)
	if err != nil {
		logger.Warn("Unable to inspect document", "mime_type", mimeType, "err", err)
	}
	logger.Info("Invoice decoded", "mime_type", mimeType, "bytes", info.Bytes, "pages", info.Pages)

	logger.Info("Processing invoice...")
	result, err := h.extractor.Extract(r.Context(), data, mimeType, extraction.InvoicePrompt)
	if err != nil {
		h.fail(w, logger, err)
		return
	}

	logger.Info("Extraction complete", "fields", result.Fields(), "missing_fields", result.MissingFields())
	h.writeJSON(w, http.StatusOK, extractResponse{Success: true, Data: result})
}

func (h *Handler) readRequest(w http.ResponseWriter, r *http.Request) (*extractRequest, *extraction.ClientInputError) {
	if r.Method != http.MethodPost {
		return nil, extraction.ErrMethodNotAllowed
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var request extractRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return nil, extraction.ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			// an empty body carries no document
			return nil, extraction.ErrMissingDocument
		default:
			return nil, extraction.ErrInvalidBody
		}
	}

	// the body must hold exactly one JSON value
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, extraction.ErrBodyTooLarge
		}
		return nil, extraction.ErrInvalidBody
	}

	if request.FileBase64 == "" {
		return nil, extraction.ErrMissingDocument
	}

	return &request, nil
}

func (h *Handler) fail(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("Error processing invoice", "err", err)
	h.writeFailure(w, err)
}
