// Package config loads application configuration from flags, environment
// variables, .env files and an optional config file, in that precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default file names inside the session directory.
const (
	DefaultOCRQRFile  = "mix_ocr_qr.json"
	DefaultScrapeFile = "gemini_scrap_output.json"
	DefaultWorksheet  = "Sheet1"
)

// Config holds the application configuration.
type Config struct {
	// Session layout
	SessionDir string
	OCRQRPath  string
	ScrapePath string
	ExcelPath  string
	OutputPath string

	// Fusion behavior
	MappingFile    string
	ScrapeFallback string
	PerPage        bool

	// Remote sheet
	SpreadsheetID   string
	WorksheetName   string
	CredentialsFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load builds configuration from all sources in order of precedence:
// command-line flags (bound by the commands), environment variables,
// .env files, an optional .expofuse.yaml, then defaults.
func Load() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindEnvKeys()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".expofuse")
	}
	_ = viper.ReadInConfig() // optional

	sessionDir := viper.GetString("session_dir")
	if sessionDir == "" {
		sessionDir, _ = os.Getwd()
	}

	cfg := &Config{
		SessionDir: sessionDir,
		OCRQRPath:  viper.GetString("input_json"),
		ScrapePath: viper.GetString("scrape_json"),
		ExcelPath:  viper.GetString("input_excel"),
		OutputPath: viper.GetString("output_excel"),

		MappingFile:    viper.GetString("mapping_file"),
		ScrapeFallback: viper.GetString("scrape_fallback"),
		PerPage:        viper.GetBool("per_page"),

		SpreadsheetID:   viper.GetString("spreadsheet_id"),
		WorksheetName:   viper.GetString("worksheet_name"),
		CredentialsFile: viper.GetString("google_credentials_file"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	if cfg.OCRQRPath == "" {
		cfg.OCRQRPath = filepath.Join(cfg.SessionDir, DefaultOCRQRFile)
	}
	if cfg.ScrapePath == "" {
		cfg.ScrapePath = filepath.Join(cfg.SessionDir, DefaultScrapeFile)
	}
	if cfg.WorksheetName == "" {
		cfg.WorksheetName = DefaultWorksheet
	}
	if cfg.ScrapeFallback == "" {
		cfg.ScrapeFallback = "most-common"
	}

	return cfg, nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// bindEnvKeys binds the environment variables the original deployment used.
func bindEnvKeys() {
	for _, key := range []string{
		"SESSION_DIR",
		"INPUT_JSON",
		"SCRAPE_JSON",
		"INPUT_EXCEL",
		"OUTPUT_EXCEL",
		"SPREADSHEET_ID",
		"WORKSHEET_NAME",
		"GOOGLE_CREDENTIALS_FILE",
	} {
		_ = viper.BindEnv(strings.ToLower(key), key)
	}
}

// getEnvOrDefault returns the environment variable value or the default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
