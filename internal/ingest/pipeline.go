package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/metrics"
	"github.com/didim/welfare-matcher/internal/models"
)

// ProductSink stores collected products. It reports whether the product
// was new.
type ProductSink interface {
	UpsertProduct(ctx context.Context, p models.Product) (bool, error)
}

// RunRecorder keeps the ingest_runs history. Optional.
type RunRecorder interface {
	StartIngestRun(ctx context.Context, sourceID string) (string, error)
	FinishIngestRun(ctx context.Context, runID, status string, found, saved, errs int) error
}

type Pipeline struct {
	Registry    *Registry
	Sink        ProductSink
	Runs        RunRecorder
	Strategies  *StrategyFactory
	Concurrency int
	Log         logger.Logger
	Metrics     *metrics.Metrics
}

func NewPipeline(reg *Registry, sink ProductSink, runs RunRecorder, log logger.Logger, m *metrics.Metrics) *Pipeline {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Pipeline{
		Registry:    reg,
		Sink:        sink,
		Runs:        runs,
		Strategies:  DefaultStrategies(),
		Concurrency: 2,
		Log:         log,
		Metrics:     m,
	}
}

func (p *Pipeline) concurrency() int {
	if p.Concurrency < 1 {
		return 1
	}
	return p.Concurrency
}

// Sources lists every registered source.
func (p *Pipeline) Sources() []SourceConfig {
	if p.Registry == nil {
		return nil
	}
	return p.Registry.Sources
}

// IngestSource collects one source, disabled or not, and records the run.
func (p *Pipeline) IngestSource(ctx context.Context, sourceID string) (IngestionStats, error) {
	if p.Registry == nil {
		return IngestionStats{}, errors.New("source registry not loaded")
	}
	config, err := p.Registry.Source(sourceID)
	if err != nil {
		return IngestionStats{}, err
	}
	if config.BaseURL == "" {
		return IngestionStats{}, fmt.Errorf("source %q has no base_url", sourceID)
	}
	strategy, err := p.Strategies.Get(config.Strategy)
	if err != nil {
		return IngestionStats{}, fmt.Errorf("source %q: %w", sourceID, err)
	}

	log := p.Log.With(map[string]interface{}{"source": sourceID})
	runID := p.startRun(ctx, sourceID, log)
	start := time.Now()

	stats, runErr := strategy.Run(ctx, config, p)

	status := runStatus(stats, runErr)
	if runID != "" {
		// The run row is closed even when ctx was cancelled.
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := p.Runs.FinishIngestRun(finishCtx, runID, status, stats.TotalFound, stats.TotalSaved, stats.Errors); err != nil {
			log.Warn("failed to update ingest run", map[string]interface{}{"run_id": runID, "error": err.Error()})
		}
		cancel()
	}

	log.Info("source ingestion finished", map[string]interface{}{
		"status":      status,
		"found":       stats.TotalFound,
		"saved":       stats.TotalSaved,
		"errors":      stats.Errors,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if runErr != nil {
		return stats, fmt.Errorf("ingest %s: %w", sourceID, runErr)
	}
	return stats, nil
}

func (p *Pipeline) startRun(ctx context.Context, sourceID string, log logger.Logger) string {
	if p.Runs == nil {
		return ""
	}
	runID, err := p.Runs.StartIngestRun(ctx, sourceID)
	if err != nil {
		log.Warn("failed to create ingest run", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return runID
}

// runStatus is "failed" when nothing could be saved out of what was found
// or the strategy itself failed.
func runStatus(stats IngestionStats, err error) string {
	if err != nil {
		return "failed"
	}
	if stats.TotalSaved == 0 && stats.TotalFound > 0 {
		return "failed"
	}
	return "completed"
}

// IngestAll runs every enabled source in turn. A failing source does not
// stop the others; the first error is returned alongside all stats.
func (p *Pipeline) IngestAll(ctx context.Context) (map[string]IngestionStats, error) {
	if p.Registry == nil {
		return nil, errors.New("source registry not loaded")
	}

	results := make(map[string]IngestionStats)
	var firstErr error
	for _, src := range p.Registry.Enabled() {
		stats, err := p.IngestSource(ctx, src.ID)
		results[src.ID] = stats
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return results, firstErr
}

// SaveRaw normalizes a listing card and upserts it as a pending product.
func (p *Pipeline) SaveRaw(ctx context.Context, src SourceConfig, raw RawProduct) error {
	product, err := NormalizeProduct(raw, src)
	if err != nil {
		p.Metrics.IncIngested(src.ID, "invalid")
		return err
	}
	if p.Sink == nil {
		return errors.New("no product sink configured")
	}

	inserted, err := p.Sink.UpsertProduct(ctx, product)
	if err != nil {
		p.Metrics.IncIngested(src.ID, "error")
		return err
	}
	if inserted {
		p.Metrics.IncIngested(src.ID, "inserted")
	} else {
		p.Metrics.IncIngested(src.ID, "updated")
	}
	return nil
}
