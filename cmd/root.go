package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "invoice-extractor",
		Short: "Invoice field extraction with multimodal LLMs",
		Long: `Invoice-extractor sends invoice documents (PDF or image scans) to a multimodal
LLM and returns the vendor name, invoice number, amount and date as JSON.

It runs as an HTTP service or extracts a single local file from the command line.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./config.yaml if present)")

	// Add subcommands
	cmd.AddCommand(newServeCmd(&cfgFile))
	cmd.AddCommand(newExtractCmd(&cfgFile))

	return cmd
}
