// Package ingest runs collection passes: it pulls candidates from the
// registered sources, deduplicates them against the store and writes the
// changed ones with fresh embeddings.
package ingest

import (
	"context"
	"time"

	"github.com/siherrmann/etfrag/model"
)

// Candidate is one observed fact before deduplication and embedding.
type Candidate struct {
	Source      model.SourceID
	NaturalKey  string
	Name        string
	Category    model.Category
	Content     string
	Metadata    model.Metadata
	CollectedAt time.Time
}

// IdentityKey derives the deterministic store key for the candidate.
func (c Candidate) IdentityKey() string {
	return model.NewIdentityKey(c.Source, c.NaturalKey)
}

// SourceCollector produces candidates for one upstream source. Collect
// returns everything the source currently observes; the coordinator decides
// what is new.
type SourceCollector interface {
	ID() model.SourceID
	Collect(ctx context.Context, options model.CollectOptions) ([]Candidate, error)
}
