package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/veridoc/internal/api"
	"github.com/jackzampolin/veridoc/internal/config"
	"github.com/jackzampolin/veridoc/internal/providers"
)

var (
	extractOCROnly    bool
	extractIncludeRaw bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file|url>",
	Short: "Extract structured fields from a document",
	Long: `Run the extraction pipeline against a single document.

The source may be a local image, a PDF (the first page is rasterized), or
an http(s) URL. Results are printed in the format selected with --output.

Examples:
  veridoc extract scan.png
  veridoc extract statement.pdf -o yaml
  veridoc extract https://example.com/passport.jpg --include-raw
  veridoc extract scan.png --ocr-only       # recognized text, no extraction`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		reg := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig())
		reg.SetLogger(logger)

		rt, err := buildRuntime(cfg, reg, logger)
		if err != nil {
			return err
		}

		image, err := rt.resolver.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		page, err := rt.engine.RecognizePage(ctx, image, 1)
		if err != nil {
			return err
		}
		if extractOCROnly {
			return api.Output(page)
		}

		result, err := rt.pipe.ProcessPage(ctx, image, page.Lines)
		if err != nil {
			return err
		}
		return api.Output(api.BuildExtractionResponse(result, extractIncludeRaw))
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractOCROnly, "ocr-only", false, "Print recognized text and stop before extraction")
	extractCmd.Flags().BoolVar(&extractIncludeRaw, "include-raw", false, "Include pre-verification candidates in the output")

	rootCmd.AddCommand(extractCmd)
}
