// =============================================================================
// Order Invoicer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoicer)
//   ├── generateCmd (invoicer generate)
//   ├── serveCmd (invoicer serve)
//   └── versionCmd (invoicer version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --env-file, --verbose)
//   2. Loading the .env file and the main configuration
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/pkg/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile is the optional .env file loaded before the configuration.
var envFile string

// verbose forces debug logging.
var verbose bool

// appConfig and appLogger are set by initApp before any subcommand runs.
var (
	appConfig *config.MainConfig
	appLogger = zap.NewNop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Order Invoicer - Turn order spreadsheets into PDF invoices",
	Long: `Order Invoicer reads an order intake file (CSV or XLSX, typically a form
responses export) and produces one PDF invoice per order row.

Key Features:
  - Flexible column matching for Indonesian and English headers
  - Down payment (DP 50%) and paid-in-full handling
  - Branding (company, bank, unit price) kept in a JSON store
  - Batch mode with an error log and an optional XLSX summary
  - Interactive HTTP mode with row selection and zip download

Example Usage:
  invoicer generate --input orders.csv        # Generate every invoice
  invoicer generate --price 120000 --report   # Override the price, write a summary
  invoicer serve                              # Start the interactive service`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	appLogger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to an optional .env file with INVOICER_* variables",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	cobra.OnInitialize(loadEnv)
}

// loadEnv loads the .env file into the process environment. A missing file
// is ignored.
func loadEnv() {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", envFile, err)
	}
}

// initApp loads the main configuration and builds the logger.
func initApp() error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Config{
		Level:  level,
		Output: cfg.LogFile,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	appConfig = cfg
	appLogger = log
	appLogger.Debug("Configuration loaded", zap.String("config", cfgFile))
	return nil
}
