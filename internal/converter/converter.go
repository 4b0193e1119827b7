// =============================================================================
// Order Invoicer - Batch Generator
// =============================================================================
//
// This module orchestrates one generation pass over a set of order rows,
// from raw row to stored PDF.
//
// GENERATION PIPELINE:
//   1. Resolve every row into an InvoiceRecord (sequential, cheap)
//   2. Reserve a unique output file name per record, in row order
//   3. Validate the record amounts
//   4. Render the PDF
//   5. Hand the bytes to the sink (directory or memory)
//
// Steps 3-5 run on a bounded worker pool. A failing row (bad record, layout
// error, panic inside the layout engine, sink error) is recorded as a
// Failure and the remaining rows continue.
//
// CONCURRENCY:
//   Results are stored by row position, so Outputs and Failures are always
//   in row order regardless of the worker count.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/pdfwriter"
	"github.com/ginjaninja78/order-invoicer/internal/resolver"
	"github.com/ginjaninja78/order-invoicer/internal/types"
	"github.com/ginjaninja78/order-invoicer/internal/validation"
	"github.com/ginjaninja78/order-invoicer/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Output is one generated invoice.
type Output struct {
	// Position is the 1-based row position in the processed set.
	Position int
	OrderID  string

	// FileName is the unique file name within the batch.
	FileName string

	// Location is where the sink stored the file (a path for DirSink).
	Location string

	Record types.InvoiceRecord
}

// Failure is one row that could not be turned into an invoice.
type Failure struct {
	Position int
	OrderID  string
	Err      error
}

// Message formats the failure as "{orderId}: {error}".
func (f Failure) Message() string {
	return fmt.Sprintf("%s: %v", f.OrderID, f.Err)
}

// BatchResult is the outcome of one generation pass.
type BatchResult struct {
	Outputs  []Output
	Failures []Failure

	// Total is the number of rows submitted.
	Total int

	Duration time.Duration
}

// Succeeded returns the number of invoices generated.
func (b *BatchResult) Succeeded() int {
	return len(b.Outputs)
}

// Progress is called once per finished row. Calls are serialized.
// Exactly one of out and fail is non-nil.
type Progress func(done, total int, out *Output, fail *Failure)

// =============================================================================
// GENERATOR
// =============================================================================

// Generator turns order rows into stored invoices.
type Generator struct {
	branding    config.Branding
	resolver    *resolver.Resolver
	opts        pdfwriter.Options
	logger      *zap.Logger
	concurrency int
	dryRun      bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithConcurrency sets the number of rows rendered in parallel (minimum 1).
func WithConcurrency(n int) Option {
	return func(g *Generator) { g.concurrency = n }
}

// WithDryRun renders every invoice but does not hand it to the sink.
func WithDryRun(dryRun bool) Option {
	return func(g *Generator) { g.dryRun = dryRun }
}

// New creates a Generator.
//
// PARAMETERS:
//   - branding: Printed on every invoice; copied, so later edits do not
//     affect a running pass.
//   - res: Builds records from rows.
//   - opts: Logo and wrapping options for the renderer.
func New(branding config.Branding, res *resolver.Resolver, opts pdfwriter.Options, options ...Option) *Generator {
	g := &Generator{
		branding:    branding.WithDefaults(),
		resolver:    res,
		opts:        opts,
		logger:      zap.NewNop(),
		concurrency: 1,
	}
	for _, o := range options {
		o(g)
	}
	if g.concurrency < 1 {
		g.concurrency = 1
	}
	if g.resolver == nil {
		g.resolver = resolver.New(nil)
	}
	return g
}

// job is one resolved row waiting to be rendered.
type job struct {
	index    int
	record   types.InvoiceRecord
	fileName string
}

// Run generates one invoice per row and stores them in sink.
//
// PARAMETERS:
//   - ctx: Cancelling it stops rows that have not started yet; they are
//     reported as failures carrying the context error.
//   - rows: The rows to process, in order.
//   - sink: Receives each PDF.
//   - progress: Optional per-row callback.
//
// RETURNS:
//   - The batch result. Run never fails as a whole.
func (g *Generator) Run(ctx context.Context, rows []types.RawRow, sink Sink, progress Progress) *BatchResult {
	start := time.Now()
	result := &BatchResult{Total: len(rows)}

	// =========================================================================
	// STEP 1: RESOLVE RECORDS AND RESERVE FILE NAMES
	// =========================================================================

	names := utils.NewNameSet()
	jobs := make([]job, len(rows))
	for i, row := range rows {
		rec := g.resolver.Build(row, i, g.branding)
		for _, w := range rec.Warnings {
			g.logger.Warn("Row value defaulted",
				zap.Int("row", rec.Position),
				zap.String("order_id", rec.OrderID),
				zap.String("warning", w))
		}
		jobs[i] = job{
			index:    i,
			record:   rec,
			fileName: names.Reserve(utils.InvoiceFileName(rec.OrderID, rec.CustomerName)),
		}
	}

	// =========================================================================
	// STEP 2: RENDER AND STORE
	// =========================================================================

	outputs := make([]*Output, len(rows))
	failures := make([]*Failure, len(rows))

	var mu sync.Mutex
	done := 0
	report := func(i int) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if progress != nil {
			progress(done, len(rows), outputs[i], failures[i])
		}
	}

	var eg errgroup.Group
	eg.SetLimit(g.concurrency)

	for i := range jobs {
		j := jobs[i]
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[j.index] = &Failure{Position: j.record.Position, OrderID: j.record.OrderID, Err: err}
			} else {
				outputs[j.index], failures[j.index] = g.process(j, sink)
			}
			report(j.index)
			return nil
		})
	}
	_ = eg.Wait()

	// =========================================================================
	// COMPLETE
	// =========================================================================

	for i := range rows {
		if outputs[i] != nil {
			result.Outputs = append(result.Outputs, *outputs[i])
		}
		if failures[i] != nil {
			result.Failures = append(result.Failures, *failures[i])
		}
	}
	result.Duration = time.Since(start)

	g.logger.Info("Generation pass finished",
		zap.Int("total", result.Total),
		zap.Int("generated", result.Succeeded()),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("elapsed", result.Duration))

	return result
}

// process validates, renders and stores one record. A panic raised by the
// layout engine is turned into a Failure.
func (g *Generator) process(j job, sink Sink) (out *Output, fail *Failure) {
	rec := j.record
	failWith := func(err error) (*Output, *Failure) {
		g.logger.Error("Invoice failed",
			zap.Int("row", rec.Position),
			zap.String("order_id", rec.OrderID),
			zap.Error(err))
		return nil, &Failure{Position: rec.Position, OrderID: rec.OrderID, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			out, fail = failWith(fmt.Errorf("layout engine panic: %v", r))
		}
	}()

	if err := validation.CheckRecord(rec); err != nil {
		return failWith(err)
	}

	data, err := pdfwriter.Generate(rec, g.branding, g.opts)
	if err != nil {
		return failWith(err)
	}

	location := j.fileName
	if !g.dryRun {
		location, err = sink.Put(j.fileName, data)
		if err != nil {
			return failWith(err)
		}
	}

	g.logger.Debug("Invoice generated",
		zap.Int("row", rec.Position),
		zap.String("order_id", rec.OrderID),
		zap.String("file", j.fileName),
		zap.Int("bytes", len(data)))

	return &Output{
		Position: rec.Position,
		OrderID:  rec.OrderID,
		FileName: j.fileName,
		Location: location,
		Record:   rec,
	}, nil
}
