package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/policyscan/internal/model"
)

// DefaultBatchConcurrency is the number of domains analyzed at once.
const DefaultBatchConcurrency = 4

// DomainAnalyzer analyzes one domain. Orchestrator implements it.
type DomainAnalyzer interface {
	AnalyzeDomain(ctx context.Context, domain string) (*model.AnalysisResult, error)
}

// BatchResult is the outcome for one domain of a batch.
type BatchResult struct {
	Domain string
	Result *model.AnalysisResult

	// Err is set when the domain could not be analyzed at all.
	Err error
}

// BatchProcessor analyzes many domains concurrently with a bounded number
// of goroutines.
type BatchProcessor struct {
	analyzer    DomainAnalyzer
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(a DomainAnalyzer, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		analyzer:    a,
		concurrency: DefaultBatchConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes domains concurrently. Results are in input order.
// A failing domain does not stop the others; its error is kept in its
// BatchResult. The returned error is the context's error if the batch was
// cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, domains []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(domains))
	err := bp.ProcessBatchWithCallback(ctx, domains, func(r BatchResult, i int) {
		results[i] = r
	})
	return results, err
}

// ProcessBatchWithCallback analyzes domains and calls callback as each one
// completes, with the domain's index in the input. The callback is called
// from worker goroutines and must be safe for concurrent use, though each
// index is delivered once.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	domains []string,
	callback func(result BatchResult, index int),
) error {
	bp.logger.Info("starting batch analysis",
		"total_domains", len(domains),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, domain := range domains {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res, err := bp.analyzer.AnalyzeDomain(ctx, domain)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				bp.logger.Warn("analysis failed",
					"domain", domain,
					"error", err,
				)
			}

			callback(BatchResult{Domain: domain, Result: res, Err: err}, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch analysis complete",
		"total_domains", len(domains),
		"elapsed", time.Since(startTime),
	)
	return err
}
