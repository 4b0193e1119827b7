// =============================================================================
// Order Invoicer - Main Entry Point
// =============================================================================
//
// USAGE:
//   invoicer generate   - Generate one PDF invoice per order row
//   invoicer serve      - Start the interactive HTTP service
//   invoicer version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, record resolution, PDF layout, generation, HTTP
//   - pkg/           : Shared utilities (file naming, archives, logging)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/order-invoicer/cmd"
)

func main() {
	cmd.Execute()
}
