package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lehigh-university-libraries/invoice-extractor/internal/config"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/extraction"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the invoice extraction HTTP service",
		Long: `Starts the HTTP service on the specified port.

POST a JSON body {"fileBase64": "...", "mimeType": "application/pdf"} to
/api/invoices/extract (or /) and receive {"success": true, "data": {...}}.`,
		Example: `  # Vertex AI (default provider)
  GCLOUD_PROJECT=my-project invoice-extractor serve

  # Gemini API on a custom port
  EXTRACTION_PROVIDER=gemini GEMINI_API_KEY=... invoice-extractor serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

			// The provider handle lives for the whole process and is shared by every request
			provider, closeProvider, err := newProvider(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
			}
			defer func() {
				if err := closeProvider(); err != nil {
					slog.Error("Unable to close provider", "err", err)
				}
			}()

			client := extraction.NewClient(provider)
			handler := handlers.New(client, cfg.MaxBodyBytes)

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Invoice extractor available", "addr", addr, "provider", client.Provider(), "model", cfg.Model)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringP("port", "p", "8888", "Port to listen on (env PORT)")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))

	return cmd
}
