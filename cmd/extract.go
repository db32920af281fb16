package cmd

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/invoice-extractor/internal/config"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/document"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/extraction"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExtractCmd(cfgFile *string) *cobra.Command {
	v := config.New()
	var mimeType string
	var output string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract invoice fields from a local file",
		Long: `Sends one local invoice file to the configured provider and prints the
extracted fields. Useful for checking a provider or model before deploying.`,
		Example: `  # Extract a PDF with the default provider
  invoice-extractor extract invoice.pdf

  # Extract a scanned image with OpenAI and print YAML
  EXTRACTION_PROVIDER=openai invoice-extractor extract scan.png --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("invalid --output %q, must be json or yaml", output)
			}

			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read invoice: %w", err)
			}
			if len(data) == 0 {
				return fmt.Errorf("invoice file %s is empty", args[0])
			}

			if mimeType == "" {
				mimeType = mime.TypeByExtension(filepath.Ext(args[0]))
			}
			mimeType = document.ResolveMIMEType(mimeType)

			provider, closeProvider, err := newProvider(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
			}
			defer closeProvider()

			result, err := extraction.NewClient(provider).Extract(cmd.Context(), data, mimeType, extraction.InvoicePrompt)
			if err != nil {
				return err
			}

			return writeResult(cmd, result, output)
		},
	}

	cmd.Flags().StringVar(&mimeType, "mime-type", "", "Document MIME type (defaults to the file extension, then application/pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json or yaml)")

	return cmd
}

func writeResult(cmd *cobra.Command, result *extraction.Result, output string) error {
	out := cmd.OutOrStdout()

	if output == "yaml" {
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
