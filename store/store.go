// Package store defines the persistence contract shared by the ingestion
// pipeline and the retrieval engine, plus an in-memory implementation used
// for tests and small deployments. The Postgres-backed implementation lives
// in the database package.
package store

import (
	"context"

	"github.com/siherrmann/etfrag/model"
)

// Filter narrows a similarity search.
type Filter struct {
	// Category restricts hits to one category. Empty matches all.
	Category model.Category
	// MinSimilarity drops hits scoring below this value. Zero keeps all.
	MinSimilarity float64
}

// VectorStore is the single write and read surface for documents. All
// implementations key documents by identity key, so re-ingesting the same
// fact lands on the same slot. Search results are ordered by similarity
// descending with version descending and identity key ascending as tie
// breaks, which keeps equal-score results deterministic.
type VectorStore interface {
	// Upsert writes the document under its identity key, inserting or
	// overwriting. The stored document is returned with its assigned ids.
	// An embedding of the wrong length returns ErrDimensionMismatch.
	Upsert(ctx context.Context, doc *model.Document) (*model.Document, error)
	// Get returns the document for the identity key or ErrNotFound.
	Get(ctx context.Context, identityKey string) (*model.Document, error)
	// Search returns up to topK documents closest to the embedding.
	Search(ctx context.Context, embedding []float32, topK int, filter Filter) ([]model.RetrievedDocument, error)
	// Count returns the number of stored documents, optionally per category.
	Count(ctx context.Context, category model.Category) (int, error)
	// Delete removes the document for the identity key or returns ErrNotFound.
	Delete(ctx context.Context, identityKey string) error
	// Dimension returns the fixed embedding dimension of the store.
	Dimension() int
}
