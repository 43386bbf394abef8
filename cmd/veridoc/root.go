package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/veridoc/internal/api"
	"github.com/jackzampolin/veridoc/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "veridoc",
	Short: "Document extraction pipeline with grounded LLM field verification",
	Long: `Veridoc turns scanned identity and business documents into structured,
verified fields using OCR and LLM extraction.

The pipeline includes:
  - Page segmentation for multi-document scans
  - Text-first extraction with vision fallback
  - Grounding verification against recognized text
  - Confidence filtering and field enrichment
  - Field categorization and relationship detection`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.veridoc/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "json", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
