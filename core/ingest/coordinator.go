package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/siherrmann/etfrag/core/pipeline"
	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
	"github.com/siherrmann/etfrag/store"
)

const (
	defaultWorkers       = 4
	defaultSourceTimeout = 2 * time.Minute
)

// Coordinator runs collection passes over the registered sources. At most
// one run is active at a time, a second trigger returns ErrRunInProgress
// instead of queueing. Failures of single documents or whole sources are
// absorbed into the run statistics, a run never fails atomically.
type Coordinator struct {
	runGate       sync.Mutex
	mu            sync.Mutex // guards collectors and lastRun
	store         store.VectorStore
	pipeline      *pipeline.Pipeline
	logger        *slog.Logger
	collectors    []SourceCollector
	workers       int
	sourceTimeout time.Duration
	lastRun       *model.CollectionRun
}

// NewCoordinator creates a coordinator writing through the given store and
// pipeline.
func NewCoordinator(st store.VectorStore, pl *pipeline.Pipeline, logger *slog.Logger) (*Coordinator, error) {
	if st == nil {
		return nil, helper.NewError("create coordinator", fmt.Errorf("%w: store required", model.ErrInvalidArgument))
	}
	if pl == nil {
		return nil, helper.NewError("create coordinator", fmt.Errorf("%w: pipeline required", model.ErrInvalidArgument))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		store:         st,
		pipeline:      pl,
		logger:        logger,
		workers:       defaultWorkers,
		sourceTimeout: defaultSourceTimeout,
	}, nil
}

// SetWorkers bounds the number of concurrent document writes per source.
func (c *Coordinator) SetWorkers(workers int) error {
	if workers <= 0 {
		return helper.NewError("set workers", fmt.Errorf("%w: workers must be positive, got %v", model.ErrInvalidArgument, workers))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workers = workers
	return nil
}

// SetSourceTimeout bounds how long one source may take to collect and write.
func (c *Coordinator) SetSourceTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return helper.NewError("set source timeout", fmt.Errorf("%w: timeout must be positive, got %v", model.ErrInvalidArgument, timeout))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sourceTimeout = timeout
	return nil
}

// Register adds a source collector. Registering two collectors for the same
// source is a configuration fault.
func (c *Coordinator) Register(collector SourceCollector) error {
	if collector == nil {
		return helper.NewError("register collector", fmt.Errorf("%w: collector required", model.ErrInvalidArgument))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.collectors {
		if existing.ID() == collector.ID() {
			return helper.NewError("register collector", fmt.Errorf("%w: collector for source %v already registered", model.ErrInvalidArgument, collector.ID()))
		}
	}
	c.collectors = append(c.collectors, collector)
	return nil
}

// LastRun returns the most recent finished run or nil.
func (c *Coordinator) LastRun() *model.CollectionRun {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun
}

// Run executes one collection pass over all enabled sources. It returns the
// finalized run record; the error is non-nil only for structural faults
// (another run active, store unreachable, nothing enabled).
func (c *Coordinator) Run(ctx context.Context, options model.CollectOptions) (*model.CollectionRun, error) {
	if !c.runGate.TryLock() {
		return nil, helper.NewError("run collection", model.ErrRunInProgress)
	}
	defer c.runGate.Unlock()

	// One cheap store round trip up front so an unreachable store fails the
	// run before any source is contacted.
	if _, err := c.store.Count(ctx, ""); err != nil {
		return nil, helper.NewError("run collection", fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err))
	}

	c.mu.Lock()
	collectors := make([]SourceCollector, 0, len(c.collectors))
	for _, collector := range c.collectors {
		if options.Enabled(collector.ID()) {
			collectors = append(collectors, collector)
		}
	}
	workers := c.workers
	sourceTimeout := c.sourceTimeout
	c.mu.Unlock()

	if len(collectors) == 0 {
		return nil, helper.NewError("run collection", fmt.Errorf("%w: no enabled sources", model.ErrInvalidArgument))
	}

	run := model.NewCollectionRun()
	c.logger.Info("Collection run started",
		slog.String("run_id", run.ID.String()),
		slog.Int("sources", len(collectors)),
	)

	// One goroutine per source, all joined before the run is finalized.
	statsBySource := make([]model.SourceStats, len(collectors))
	var wg sync.WaitGroup
	for i, collector := range collectors {
		wg.Add(1)
		go func(i int, collector SourceCollector) {
			defer wg.Done()
			statsBySource[i] = c.processSource(ctx, collector, options, workers, sourceTimeout)
		}(i, collector)
	}
	wg.Wait()

	for i, collector := range collectors {
		run.Record(collector.ID(), statsBySource[i])
	}
	run.Finalize()

	totals := run.Totals()
	c.logger.Info("Collection run finished",
		slog.String("run_id", run.ID.String()),
		slog.Int("attempted", totals.Attempted),
		slog.Int("succeeded", totals.Succeeded),
		slog.Int("failed", totals.Failed),
		slog.Int("skipped", totals.Skipped),
		slog.Bool("partially_failed", run.PartiallyFailed()),
	)

	c.mu.Lock()
	c.lastRun = run
	c.mu.Unlock()

	return run, nil
}

// processSource collects one source and writes its candidates through a
// bounded worker pool. Source level failures count as one failed item so the
// run record shows the source went dark.
func (c *Coordinator) processSource(ctx context.Context, collector SourceCollector, options model.CollectOptions, workers int, sourceTimeout time.Duration) model.SourceStats {
	sourceCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	candidates, err := collector.Collect(sourceCtx, options)
	if err != nil {
		c.logger.Warn("Source collection failed",
			slog.String("source", string(collector.ID())),
			slog.String("error", err.Error()),
		)
		return model.SourceStats{Failed: 1}
	}
	if len(candidates) == 0 {
		c.logger.Warn("Source returned no candidates",
			slog.String("source", string(collector.ID())),
		)
		return model.SourceStats{Failed: 1}
	}

	jobs := make(chan Candidate)
	workerStats := make([]model.SourceStats, workers)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for candidate := range jobs {
				workerStats[w].Add(c.processCandidate(sourceCtx, candidate))
			}
		}(w)
	}

	for _, candidate := range candidates {
		jobs <- candidate
	}
	close(jobs)
	wg.Wait()

	var stats model.SourceStats
	for _, ws := range workerStats {
		stats.Add(ws)
	}
	return stats
}

// processCandidate resolves one candidate against the store and performs the
// resulting write. Every failure is local to the candidate.
func (c *Coordinator) processCandidate(ctx context.Context, candidate Candidate) model.SourceStats {
	stats := model.SourceStats{Attempted: 1}

	identityKey := candidate.IdentityKey()
	normalized := pipeline.NormalizeText(candidate.Content)
	if normalized == "" {
		c.logger.Warn("Candidate has no content",
			slog.String("identity_key", identityKey),
		)
		stats.Failed = 1
		return stats
	}
	contentHash := model.ComputeContentHash(normalized)

	existing, err := c.store.Get(ctx, identityKey)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		c.logger.Warn("Candidate lookup failed",
			slog.String("identity_key", identityKey),
			slog.String("error", err.Error()),
		)
		stats.Failed = 1
		return stats
	}

	resolution := Resolve(contentHash, existing)
	if resolution.Action == ActionSkip {
		c.logger.Debug("Candidate unchanged, skipping",
			slog.String("identity_key", identityKey),
			slog.Int("version", resolution.Version),
		)
		stats.Skipped = 1
		return stats
	}

	embedding, err := c.pipeline.Embed(ctx, candidate.Content)
	if err != nil {
		c.logger.Warn("Candidate embedding failed",
			slog.String("identity_key", identityKey),
			slog.String("error", err.Error()),
		)
		stats.Failed = 1
		return stats
	}

	doc := &model.Document{
		IdentityKey: identityKey,
		Name:        candidate.Name,
		Category:    candidate.Category,
		Source:      candidate.Source,
		Content:     normalized,
		ContentHash: contentHash,
		Version:     resolution.Version,
		Embedding:   embedding,
		Metadata:    candidate.Metadata,
		CollectedAt: candidate.CollectedAt,
	}
	if _, err := c.store.Upsert(ctx, doc); err != nil {
		c.logger.Warn("Candidate write failed",
			slog.String("identity_key", identityKey),
			slog.String("error", err.Error()),
		)
		stats.Failed = 1
		return stats
	}

	c.logger.Debug("Candidate written",
		slog.String("identity_key", identityKey),
		slog.String("action", resolution.Action.String()),
		slog.Int("version", resolution.Version),
	)
	stats.Succeeded = 1
	return stats
}
