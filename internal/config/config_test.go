package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofuse/expofuse/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SESSION_DIR", dir)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.SessionDir)
	assert.Equal(t, filepath.Join(dir, config.DefaultOCRQRFile), cfg.OCRQRPath)
	assert.Equal(t, filepath.Join(dir, config.DefaultScrapeFile), cfg.ScrapePath)
	assert.Equal(t, config.DefaultWorksheet, cfg.WorksheetName)
	assert.Equal(t, "most-common", cfg.ScrapeFallback)
	assert.Empty(t, cfg.OutputPath)
	assert.Empty(t, cfg.SpreadsheetID)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SESSION_DIR", dir)
	t.Setenv("INPUT_JSON", "/data/custom.json")
	t.Setenv("SCRAPE_JSON", "/data/scrape.json")
	t.Setenv("OUTPUT_EXCEL", "/data/out.xlsx")
	t.Setenv("SPREADSHEET_ID", "sheet-123")
	t.Setenv("WORKSHEET_NAME", "Companies")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/secrets/sa.json")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/custom.json", cfg.OCRQRPath)
	assert.Equal(t, "/data/scrape.json", cfg.ScrapePath)
	assert.Equal(t, "/data/out.xlsx", cfg.OutputPath)
	assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
	assert.Equal(t, "Companies", cfg.WorksheetName)
	assert.Equal(t, "/secrets/sa.json", cfg.CredentialsFile)
}

func TestLoadLoggingEnv(t *testing.T) {
	t.Setenv("SESSION_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}
