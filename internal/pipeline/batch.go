package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/log"
	"github.com/nao1215/prodscout/internal/model"
)

// BatchProcessor analyzes several product URLs concurrently. Every URL gets
// its own Analysis; a failed analysis does not stop the others.
type BatchProcessor struct {
	// pipelineFactory creates the pipeline for each URL.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Non-positive values keep the default of 3.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = log.Discard()
	}
	return bp
}

// ProcessBatch analyzes urls and returns one Analysis per URL in input
// order. Failures are recorded in each Analysis. The error is non-nil only
// when ctx ends before every analysis has started; analyses that never
// started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.Analysis, error) {
	results := make([]*model.Analysis, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(a *model.Analysis, i int) {
		results[i] = a
	})
	return results, err
}

// ProcessBatchWithCallback analyzes urls and calls callback with each
// finished analysis and its index in urls. The callback runs on the
// goroutine of the analysis and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(analysis *model.Analysis, index int),
) error {
	bp.logger.Info("starting batch", "total", len(urls), "concurrency", bp.concurrency)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			bp.logger.Info("analyzing product", "url", url, "index", i+1, "total", len(urls))

			analysis := model.NewAnalysis(url)
			if err := bp.pipelineFactory().Execute(ctx, analysis); err != nil {
				bp.logger.Warn("analysis failed", "url", url, "error", err)
			}
			callback(analysis, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete", "total", len(urls), "elapsed", time.Since(start))
	return err
}
