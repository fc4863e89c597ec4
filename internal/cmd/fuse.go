package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/expofuse/expofuse/internal/config"
	"github.com/expofuse/expofuse/pkg/fuse"
	"github.com/expofuse/expofuse/pkg/logging"
	"github.com/expofuse/expofuse/pkg/table"
)

func newFuseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuse",
		Short: "Fuse session sources into a merged workbook",
		Long: `Reads the OCR/QR extraction output (or an operator workbook when no
extraction output exists), enriches it with scraped website data, merges
duplicate companies and writes the result to an .xlsx file.`,
		RunE: runFuse,
	}

	cmd.Flags().String("session-dir", "", "session directory holding the input files")
	cmd.Flags().String("ocr-json", "", "OCR/QR extraction output (default: <session>/"+config.DefaultOCRQRFile+")")
	cmd.Flags().String("scrape-json", "", "website scrape output (default: <session>/"+config.DefaultScrapeFile+")")
	cmd.Flags().String("excel", "", "operator workbook used when no extraction output exists")
	cmd.Flags().StringP("output", "o", "", "output workbook path (default: <session>/merged_final_<timestamp>.xlsx)")
	cmd.Flags().String("mapping", "", "column mapping file overriding the built-in mapping")
	cmd.Flags().String("fallback", "", "scrape link fallback: most-common or skip")
	cmd.Flags().Bool("per-page", false, "keep one row per card page instead of merging companies")

	bindFuseFlags(cmd)

	return cmd
}

// bindFuseFlags routes the command flags into the shared configuration keys
// so flags, env vars and the config file resolve through one path.
func bindFuseFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("session_dir", cmd.Flags().Lookup("session-dir"))
	_ = viper.BindPFlag("input_json", cmd.Flags().Lookup("ocr-json"))
	_ = viper.BindPFlag("scrape_json", cmd.Flags().Lookup("scrape-json"))
	_ = viper.BindPFlag("input_excel", cmd.Flags().Lookup("excel"))
	_ = viper.BindPFlag("output_excel", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("mapping_file", cmd.Flags().Lookup("mapping"))
	_ = viper.BindPFlag("scrape_fallback", cmd.Flags().Lookup("fallback"))
	_ = viper.BindPFlag("per_page", cmd.Flags().Lookup("per-page"))
}

func runFuse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	result, err := runPipeline(cmd, cfg)
	if err != nil {
		return err
	}

	output := cfg.OutputPath
	if output == "" {
		output = fuse.OutputName(cfg.SessionDir, time.Now())
	}
	if err := table.WriteXLSX(result.Table, output); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	logging.Info().
		Str("output", output).
		Int("rows", result.Table.Len()).
		Int("columns", len(result.Table.Columns())).
		Msg("workbook written")
	return nil
}

// runPipeline builds and runs the fusion pipeline from configuration.
// Shared by the fuse and sync commands.
func runPipeline(cmd *cobra.Command, cfg *config.Config) (*fuse.Result, error) {
	opts := []fuse.Option{}

	if cfg.MappingFile != "" {
		m, err := fuse.LoadMapping(cfg.MappingFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fuse.WithMapping(m))
	}
	switch cfg.ScrapeFallback {
	case "", "most-common":
		opts = append(opts, fuse.WithFallback(fuse.FallbackMostCommon))
	case "skip":
		opts = append(opts, fuse.WithFallback(fuse.FallbackSkip))
	default:
		return nil, fmt.Errorf("unknown scrape fallback %q (want most-common or skip)", cfg.ScrapeFallback)
	}
	if cfg.PerPage {
		opts = append(opts, fuse.WithPerPageRows())
	}

	ctx := logging.WithLogger(cmd.Context(), logging.Default())
	result, err := fuse.New(opts...).Run(ctx, fuse.Inputs{
		OCRQRPath:  cfg.OCRQRPath,
		ScrapePath: cfg.ScrapePath,
		ExcelPath:  cfg.ExcelPath,
		SessionDir: cfg.SessionDir,
	})
	if err != nil {
		return nil, err
	}
	if result.ScrapeError != nil {
		logging.Warn().Err(result.ScrapeError).Msg("scrape enrichment skipped")
	}
	return result, nil
}
