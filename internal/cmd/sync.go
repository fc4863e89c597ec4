package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/expofuse/expofuse/internal/config"
	"github.com/expofuse/expofuse/pkg/errors"
	"github.com/expofuse/expofuse/pkg/logging"
	"github.com/expofuse/expofuse/pkg/sheetsync"
	"github.com/expofuse/expofuse/pkg/table"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Append new rows to the shared Google Sheet",
		Long: `Synchronizes a merged workbook into the shared Google Sheet: columns the
sheet has never seen are added to its header, pre-existing rows are padded,
and only the new rows are appended. Rows already on the sheet are never
rewritten.`,
		RunE: runSync,
	}

	cmd.Flags().String("input", "", "merged workbook to sync (default: run the fusion pipeline)")
	cmd.Flags().String("spreadsheet-id", "", "Google Sheets spreadsheet ID")
	cmd.Flags().String("worksheet", "", "worksheet name (default: "+config.DefaultWorksheet+")")
	cmd.Flags().String("credentials", "", "Google service account credentials file")

	// The fusion flags apply here too when no --input workbook is given.
	cmd.Flags().String("session-dir", "", "session directory holding the input files")
	cmd.Flags().String("ocr-json", "", "OCR/QR extraction output")
	cmd.Flags().String("scrape-json", "", "website scrape output")
	cmd.Flags().String("excel", "", "operator workbook used when no extraction output exists")
	cmd.Flags().String("mapping", "", "column mapping file overriding the built-in mapping")
	cmd.Flags().String("fallback", "", "scrape link fallback: most-common or skip")
	cmd.Flags().Bool("per-page", false, "keep one row per card page instead of merging companies")

	bindFuseFlags(cmd)
	_ = viper.BindPFlag("spreadsheet_id", cmd.Flags().Lookup("spreadsheet-id"))
	_ = viper.BindPFlag("worksheet_name", cmd.Flags().Lookup("worksheet"))
	_ = viper.BindPFlag("google_credentials_file", cmd.Flags().Lookup("credentials"))

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.SpreadsheetID == "" {
		return &errors.ValidationError{Field: "spreadsheet_id", Message: "required: set --spreadsheet-id or SPREADSHEET_ID"}
	}
	if cfg.CredentialsFile == "" {
		return &errors.ValidationError{Field: "google_credentials_file", Message: "required: set --credentials or GOOGLE_CREDENTIALS_FILE"}
	}

	input, _ := cmd.Flags().GetString("input")
	var t *table.Table
	if input != "" {
		t, err = table.ReadXLSX(input)
		if err != nil {
			return fmt.Errorf("reading workbook: %w", err)
		}
	} else {
		result, err := runPipeline(cmd, cfg)
		if err != nil {
			return err
		}
		t = result.Table
	}

	ctx := logging.WithLogger(cmd.Context(), logging.Default())
	store, err := sheetsync.NewGoogleSheets(ctx, cfg.SpreadsheetID, cfg.WorksheetName, cfg.CredentialsFile)
	if err != nil {
		return err
	}

	report, err := sheetsync.New(store).Sync(ctx, t)
	if err != nil {
		if errors.Retryable(err) {
			logging.Warn().Msg("API quota exhausted; rerun after the quota window resets")
		}
		return err
	}

	logging.Info().
		Int("appended", report.Appended).
		Int("total_rows", report.TotalRows).
		Int("total_columns", report.TotalColumns).
		Int("total_cells", report.TotalCells).
		Strs("new_columns", report.NewColumns).
		Msg("sheet synchronized")
	return nil
}
