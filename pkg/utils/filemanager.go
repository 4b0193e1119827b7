// =============================================================================
// Order Invoicer - File Manager Utility
// =============================================================================
//
// This module provides file utilities for the invoice generator, including:
//   - Output directory management
//   - Invoice and archive file naming
//   - Per-batch name de-duplication
//   - Error log generation
//
// NAMING RULES:
//   Invoice_{order id}_{customer name}.pdf, where both parts are sanitized:
//   characters that are invalid in file names (<>:"/\|?*), control
//   characters and whitespace become "_", runs of "_" collapse to one and
//   leading/trailing "_" are trimmed.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
)

const (
	// UnknownCustomer replaces a missing customer name in file names.
	UnknownCustomer = "Unknown"

	invoicePrefix    = "Invoice_"
	invoiceExtension = ".pdf"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the generator.
type FileManager struct {
	// OutputDir is the directory invoices and logs are written to.
	OutputDir string
}

// NewFileManager creates a new FileManager for outputDir.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{OutputDir: outputDir}
}

// EnsureDirectories creates the output directory if it doesn't exist.
//
// RETURNS:
//   - An error if the directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// WriteFile writes data to name inside the output directory and returns
// the full path. name must be a bare file name.
func (fm *FileManager) WriteFile(name string, data []byte) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid output file name %q", name)
	}

	path := filepath.Join(fm.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	underscores  = regexp.MustCompile(`_+`)
)

// SanitizeFilename makes s safe to use as part of a file name.
//
// EXAMPLE:
//
//	`OR/DER:1` -> `OR_DER_1`
//	` Jane  Doe ` -> `Jane_Doe`
func SanitizeFilename(s string) string {
	s = invalidChars.ReplaceAllString(s, "_")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, s)
	s = underscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// InvoiceFileName returns the output file name for an invoice.
//
// PARAMETERS:
//   - orderID: The resolved order id (never blank after resolution).
//   - customerName: The customer name; blank or "-" is written as Unknown.
func InvoiceFileName(orderID, customerName string) string {
	name := strings.TrimSpace(customerName)
	if name == "-" {
		name = ""
	}

	safeName := SanitizeFilename(name)
	if safeName == "" {
		safeName = UnknownCustomer
	}

	safeOrder := SanitizeFilename(orderID)
	if safeOrder == "" {
		safeOrder = "ORDER"
	}

	return invoicePrefix + safeOrder + "_" + safeName + invoiceExtension
}

// ArchiveFileName returns the zip name for a batch created at t.
func ArchiveFileName(t time.Time) string {
	return fmt.Sprintf("invoices_%s.zip", t.Format("20060102_150405"))
}

// NameSet hands out unique file names within one batch. It is safe for
// concurrent use.
type NameSet struct {
	mu   sync.Mutex
	used map[string]bool
}

// NewNameSet creates an empty NameSet.
func NewNameSet() *NameSet {
	return &NameSet{used: make(map[string]bool)}
}

// Reserve returns name, or name with a "_2", "_3", ... suffix before the
// extension when it was already handed out.
//
// EXAMPLE:
//
//	Invoice_A1_Budi.pdf, Invoice_A1_Budi_2.pdf, Invoice_A1_Budi_3.pdf
func (s *NameSet) Reserve(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for n := 2; s.used[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
	}

	s.used[candidate] = true
	return candidate
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single failed invoice.
type ErrorLogEntry struct {
	Timestamp time.Time
	Source    string
	Position  int
	OrderID   string
	Message   string
}

// WriteErrorLog writes error entries to a log file in outputDir.
//
// RETURNS:
//   - The path to the error log file ("" when there are no entries).
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Order Invoicer - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp: %s\n"+
			"  Source:    %s\n"+
			"  Row:       %d\n"+
			"  Order ID:  %s\n"+
			"  Message:   %s\n\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Source,
			entry.Position,
			entry.OrderID,
			entry.Message)
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
