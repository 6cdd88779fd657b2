package model

import (
	"time"

	"github.com/google/uuid"
)

// SourceStats counts the outcomes of one source within a collection run.
// Skipped records duplicate no-writes, which are deliberate outcomes and not
// failures.
type SourceStats struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Add merges other into s.
func (s *SourceStats) Add(other SourceStats) {
	s.Attempted += other.Attempted
	s.Succeeded += other.Succeeded
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}

// CollectionRun is the ephemeral record of one ingestion pass. It is owned
// exclusively by the coordinator and finalized only after all dispatched
// writes have completed or failed. It is kept in memory and logged, never
// persisted.
type CollectionRun struct {
	ID           uuid.UUID                 `json:"id"`
	StartedAt    time.Time                 `json:"started_at"`
	FinishedAt   time.Time                 `json:"finished_at"`
	Sources      map[SourceID]*SourceStats `json:"sources"`
	TotalWritten int                       `json:"total_written"`
}

// NewCollectionRun creates a run record with the start time set.
func NewCollectionRun() *CollectionRun {
	return &CollectionRun{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Sources:   map[SourceID]*SourceStats{},
	}
}

// Record stores the outcome counts for one source and updates the write total.
func (r *CollectionRun) Record(source SourceID, stats SourceStats) {
	existing, ok := r.Sources[source]
	if !ok {
		existing = &SourceStats{}
		r.Sources[source] = existing
	}
	existing.Add(stats)
	r.TotalWritten += stats.Succeeded
}

// Finalize sets the end time.
func (r *CollectionRun) Finalize() {
	r.FinishedAt = time.Now()
}

// Totals sums the stats over all sources.
func (r *CollectionRun) Totals() SourceStats {
	var total SourceStats
	for _, stats := range r.Sources {
		total.Add(*stats)
	}
	return total
}

// PartiallyFailed reports whether any source recorded failures.
func (r *CollectionRun) PartiallyFailed() bool {
	for _, stats := range r.Sources {
		if stats.Failed > 0 {
			return true
		}
	}
	return false
}
