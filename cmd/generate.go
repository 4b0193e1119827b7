// =============================================================================
// Order Invoicer - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, the batch mode of the invoicer.
//
// COMMAND USAGE:
//   invoicer generate [flags]
//
// FLAGS:
//   --input        : Order intake file (.csv, .xlsx, .xlsm)
//   --output       : Directory receiving the PDF invoices
//   --logo         : Optional logo image for the invoice header
//   --branding     : Branding JSON store (company, bank, unit price)
//   --price        : Unit price override for this run
//   --concurrency  : Number of invoices rendered at once
//   --dry-run      : Build and render every invoice without writing files
//   --report       : Also write an XLSX summary of the run
//
// PROCESSING PIPELINE:
//   1. Load the branding and the order file
//   2. Report missing columns (they fall back to defaults)
//   3. Generate one invoice per row, printing progress
//   4. Print a summary, then write the error log and the optional report
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/converter"
	"github.com/ginjaninja78/order-invoicer/internal/pdfwriter"
	"github.com/ginjaninja78/order-invoicer/internal/report"
	"github.com/ginjaninja78/order-invoicer/internal/resolver"
	"github.com/ginjaninja78/order-invoicer/internal/validation"
	"github.com/ginjaninja78/order-invoicer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputFile    string
	outputDir    string
	logoFile     string
	brandingFile string
	unitPrice    int64
	concurrency  int
	dryRun       bool
	writeReport  bool
)

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one PDF invoice per order row",
	Long: `The generate command reads the order file and writes one PDF invoice per
row into the output directory.

A row that cannot be turned into an invoice is reported and skipped; the
remaining rows are still processed. Failed rows are listed in an error log
in the output directory.

Missing or malformed values never fail a row: they fall back to a default
("-", quantity 1, the current time) and a warning is logged.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyGenerateFlags(cmd); err != nil {
			return err
		}
		return runGenerate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Order intake file (.csv, .xlsx, .xlsm)")
	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory receiving the PDF invoices")
	generateCmd.Flags().StringVar(&logoFile, "logo", "", "Logo image (PNG, JPG or GIF) for the invoice header")
	generateCmd.Flags().StringVar(&brandingFile, "branding", "", "Branding JSON store")
	generateCmd.Flags().Int64Var(&unitPrice, "price", 0, "Unit price override for this run")
	generateCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of invoices rendered at once")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render every invoice without writing files")
	generateCmd.Flags().BoolVar(&writeReport, "report", false, "Also write an XLSX summary of the run")
}

// priceOverride is the --price value when the flag was set.
var priceOverride *int64

// applyGenerateFlags copies the flags the user set over the loaded configuration.
func applyGenerateFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		appConfig.InputFile = inputFile
	}
	if flags.Changed("output") {
		appConfig.OutputDir = outputDir
	}
	if flags.Changed("logo") {
		appConfig.LogoFile = logoFile
	}
	if flags.Changed("branding") {
		appConfig.BrandingFile = brandingFile
	}
	if flags.Changed("concurrency") && concurrency > 0 {
		appConfig.MaxConcurrency = concurrency
	}

	priceOverride = nil
	if flags.Changed("price") {
		if unitPrice < 0 {
			return fmt.Errorf("price must not be negative, got %d", unitPrice)
		}
		price := unitPrice
		priceOverride = &price
	}
	return nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runGenerate(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	cfg := appConfig

	fmt.Println("=== Order Invoicer ===")

	// =========================================================================
	// STEP 1: LOAD BRANDING AND ORDERS
	// =========================================================================

	store := config.NewBrandingStore(cfg.BrandingFile)
	branding, err := store.Load()
	if err != nil {
		fmt.Printf("Warning: %v (using built-in branding)\n", err)
		appLogger.Warn("Branding store unreadable", zap.Error(err))
	}
	if priceOverride != nil {
		branding.UnitPrice = *priceOverride
	}

	fmt.Printf("Reading %s...\n", cfg.InputFile)
	table, err := converter.LoadTable(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}
	fmt.Printf("Found %d order row(s) (%s)\n", len(table.Rows), table.Encoding)

	res := resolver.New(cfg.ColumnAliases)

	// =========================================================================
	// STEP 2: HEADER COVERAGE
	// =========================================================================

	if findings := validation.CheckHeaders(table.Headers, res.Aliases()); len(findings) > 0 {
		fmt.Println("\nColumn check:")
		fmt.Println(validation.FormatErrors(findings))
	}

	if len(table.Rows) == 0 {
		fmt.Println("No order rows to process.")
		return nil
	}

	if cfg.LogoFile != "" && !utils.FileExists(cfg.LogoFile) {
		appLogger.Info("Logo not found, using initials", zap.String("logo", cfg.LogoFile))
	}

	// =========================================================================
	// STEP 3: GENERATE
	// =========================================================================

	var sink converter.Sink = converter.NewMemorySink()
	if !dryRun {
		dirSink, err := converter.NewDirSink(cfg.OutputDir)
		if err != nil {
			return err
		}
		sink = dirSink
	}

	gen := converter.New(branding, res,
		pdfwriter.Options{LogoPath: cfg.LogoFile, WrapWidth: cfg.AddressWrapWidth},
		converter.WithLogger(appLogger),
		converter.WithConcurrency(cfg.MaxConcurrency),
		converter.WithDryRun(dryRun),
	)

	fmt.Println("\nGenerating invoices...")
	result := gen.Run(ctx, table.Rows, sink, printProgress)

	// =========================================================================
	// STEP 4: SUMMARY, ERROR LOG, REPORT
	// =========================================================================

	fmt.Println("\n=== Generation Complete ===")
	fmt.Printf("Total rows:      %d\n", result.Total)
	fmt.Printf("Invoices:        %d\n", result.Succeeded())
	fmt.Printf("Errors:          %d\n", len(result.Failures))
	fmt.Printf("Time elapsed:    %s\n", result.Duration.Round(time.Millisecond))
	if dryRun {
		fmt.Println("Dry run: no files were written.")
	} else {
		fmt.Printf("Output folder:   %s\n", cfg.OutputDir)
	}

	if len(result.Failures) > 0 && !dryRun {
		entries := make([]utils.ErrorLogEntry, 0, len(result.Failures))
		now := time.Now()
		for _, f := range result.Failures {
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp: now,
				Source:    table.SourceFile,
				Position:  f.Position,
				OrderID:   f.OrderID,
				Message:   f.Err.Error(),
			})
		}
		logPath, err := utils.WriteErrorLog(entries, cfg.OutputDir)
		if err != nil {
			appLogger.Error("Error log not written", zap.Error(err))
		} else {
			fmt.Printf("\nErrors have been logged to %s\n", logPath)
		}
	}

	if writeReport {
		path, err := report.WriteFile(cfg.ReportDirectory(), result, table.SourceFile, time.Now())
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Summary report:  %s\n", path)
	}

	if result.Succeeded() == 0 {
		return fmt.Errorf("no invoices were generated")
	}
	return nil
}

// printProgress prints one line per finished row.
func printProgress(done, total int, out *converter.Output, fail *converter.Failure) {
	if fail != nil {
		fmt.Printf("  ✗ [%d/%d] %s\n", done, total, fail.Message())
		return
	}
	fmt.Printf("  ✓ [%d/%d] %s\n", done, total, out.FileName)
}
