package handlers

import (
	"log/slog"
	"net/http"
)

// Routes returns the HTTP routes wrapped in the CORS middleware.
// The extraction endpoint is also mounted at / so the service can be
// deployed as a single-route function.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/invoices/extract", h.HandleExtract)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	mux.HandleFunc("/", h.HandleExtract)

	return CORS(mux)
}
