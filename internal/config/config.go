// =============================================================================
// Order Invoicer - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults (applyMainConfigDefaults)
//   2. Main config file (config.yaml)
//   3. Environment variables (INVOICER_*), optionally from a .env file
//   4. Command-line flags (applied by the cmd package)
//
// The branding document (company, bank and price metadata) lives in its own
// JSON store, see store.go.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// FILE SETTINGS
	// =========================================================================

	// InputFile is the order intake file processed by the batch command.
	// Default: "FORM ORDER PO KAOS - Form Responses 1.csv"
	InputFile string `yaml:"input_file"`

	// OutputDir is the directory where generated PDF invoices are placed.
	// Default: "./output_invoices"
	OutputDir string `yaml:"output_dir"`

	// LogoFile is an optional PNG/JPG/GIF shown in the invoice header.
	// Default: "logo.png" (silently replaced by a placeholder when absent)
	LogoFile string `yaml:"logo_file"`

	// BrandingFile is the JSON document holding company, bank and price data.
	// Default: "branding.json"
	BrandingFile string `yaml:"branding_file"`

	// ReportDir is where XLSX batch summaries are written.
	// Default: empty, meaning the output directory (see ReportDirectory)
	ReportDir string `yaml:"report_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is "stdout", "stderr" or a file path.
	// Default: "stderr"
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of invoices rendered at once.
	// Set to 1 for sequential processing.
	// Default: 1
	MaxConcurrency int `yaml:"max_concurrency"`

	// AddressWrapWidth is the characters per line for the shipping address.
	// Default: 50
	AddressWrapWidth int `yaml:"address_wrap_width"`

	// ColumnAliases adds extra accepted column labels per semantic field.
	// Keys: order_id, name, address, size, quantity, payment_method,
	// payment_status, timestamp, phone. Configured labels are tried before
	// the built-in ones.
	//
	// Example:
	//   column_aliases:
	//     quantity: ["Pcs", "Jumlah Pesanan"]
	ColumnAliases map[string][]string `yaml:"column_aliases"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// Server holds the settings of the interactive HTTP service.
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxUploadMB caps the size of an uploaded order file.
	MaxUploadMB int64 `yaml:"max_upload_mb"`

	// SessionTTL is how long uploads and generated batches are kept in memory.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// AllowedOrigins lists CORS origins for a browser front end.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// DefaultMainConfig returns a configuration with every default applied.
func DefaultMainConfig() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file exists but cannot be read or parsed.
//
// A missing file is not an error: the batch command runs on built-in
// defaults, matching a first run with no configuration at all.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Fall through to defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&config)
	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// ReportDirectory returns ReportDir, or OutputDir when no report directory
// was configured. It is resolved on use so an --output flag applied after
// loading still moves the report.
func (c *MainConfig) ReportDirectory() string {
	if c.ReportDir != "" {
		return c.ReportDir
	}
	return c.OutputDir
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputFile == "" {
		config.InputFile = "FORM ORDER PO KAOS - Form Responses 1.csv"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output_invoices"
	}
	if config.LogoFile == "" {
		config.LogoFile = "logo.png"
	}
	if config.BrandingFile == "" {
		config.BrandingFile = "branding.json"
	}
	if config.LogFile == "" {
		config.LogFile = "stderr"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}
	if config.AddressWrapWidth <= 0 {
		config.AddressWrapWidth = 50
	}

	// Server defaults.
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 30 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 2 * time.Minute
	}
	if config.Server.MaxUploadMB <= 0 {
		config.Server.MaxUploadMB = 10
	}
	if config.Server.SessionTTL == 0 {
		config.Server.SessionTTL = time.Hour
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"*"}
	}
}

// applyEnvOverrides copies INVOICER_* environment variables over the file values.
func applyEnvOverrides(config *MainConfig) {
	stringVars := map[string]*string{
		"INVOICER_INPUT_FILE":    &config.InputFile,
		"INVOICER_OUTPUT_DIR":    &config.OutputDir,
		"INVOICER_LOGO_FILE":     &config.LogoFile,
		"INVOICER_BRANDING_FILE": &config.BrandingFile,
		"INVOICER_REPORT_DIR":    &config.ReportDir,
		"INVOICER_LOG_FILE":      &config.LogFile,
		"INVOICER_LOG_LEVEL":     &config.LogLevel,
		"INVOICER_LOG_FORMAT":    &config.LogFormat,
		"INVOICER_HOST":          &config.Server.Host,
	}
	for key, target := range stringVars {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*target = value
		}
	}

	intVars := map[string]*int{
		"INVOICER_PORT":            &config.Server.Port,
		"INVOICER_MAX_CONCURRENCY": &config.MaxConcurrency,
	}
	for key, target := range intVars {
		if value, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(value); err == nil {
				*target = n
			}
		}
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", config.Server.Port)
	}

	switch config.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", config.LogFormat)
	}

	return nil
}
