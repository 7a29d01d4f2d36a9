package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for prodscout.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prodscout",
		Short: "Competitive analysis reports for product pages",
		Long: `prodscout turns a product page URL into a competitive analysis report.

Each analysis runs six stages: web scraping, document ingestion,
information extraction, competitive research, analysis comparison and
report generation. Run it once from the terminal with 'analyze', or start
the HTTP API with 'serve' to stream progress to clients.

The language model is configured with OPENAI_API_KEY, OPENAI_BASE_URL and
OPENAI_MODEL_NAME, or with the configuration file created by 'init'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .prodscout in current or home directory)")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
