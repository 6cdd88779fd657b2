package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
)

// MemoryStore is a process-local VectorStore. Writes and reads are safe for
// concurrent use. Similarity is cosine similarity over the raw vectors.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	nextID    int64
	documents map[string]*model.Document
}

var _ VectorStore = &MemoryStore{}

// NewMemoryStore creates an empty store with a fixed embedding dimension.
func NewMemoryStore(dimension int) (*MemoryStore, error) {
	if dimension <= 0 {
		return nil, helper.NewError("create memory store", fmt.Errorf("%w: dimension must be positive, got %v", model.ErrInvalidArgument, dimension))
	}
	return &MemoryStore{
		dimension: dimension,
		documents: map[string]*model.Document{},
	}, nil
}

// Dimension returns the fixed embedding dimension of the store.
func (m *MemoryStore) Dimension() int {
	return m.dimension
}

// Upsert writes the document under its identity key. Concurrent writers to
// the same key serialize on the store lock, the later write wins.
func (m *MemoryStore) Upsert(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if doc == nil || doc.IdentityKey == "" {
		return nil, helper.NewError("upsert document", fmt.Errorf("%w: document with identity key required", model.ErrInvalidArgument))
	}
	if len(doc.Embedding) != m.dimension {
		return nil, helper.NewError("upsert document", fmt.Errorf("%w: got %v, store expects %v", model.ErrDimensionMismatch, len(doc.Embedding), m.dimension))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneDocument(doc)
	stored.UpdatedAt = time.Now()
	if existing, ok := m.documents[doc.IdentityKey]; ok {
		stored.ID = existing.ID
		stored.RID = existing.RID
	} else {
		m.nextID++
		stored.ID = m.nextID
		stored.RID = uuid.New()
	}
	if stored.Version <= 0 {
		stored.Version = 1
	}
	if stored.CollectedAt.IsZero() {
		stored.CollectedAt = stored.UpdatedAt
	}

	m.documents[doc.IdentityKey] = stored
	return cloneDocument(stored), nil
}

// Get returns the document for the identity key or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, identityKey string) (*model.Document, error) {
	if identityKey == "" {
		return nil, helper.NewError("get document", fmt.Errorf("%w: identity key required", model.ErrInvalidArgument))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.documents[identityKey]
	if !ok {
		return nil, helper.NewError("get document", fmt.Errorf("%w: %v", model.ErrNotFound, identityKey))
	}
	return cloneDocument(doc), nil
}

// Search returns up to topK documents ordered by similarity descending,
// version descending, identity key ascending.
func (m *MemoryStore) Search(ctx context.Context, embedding []float32, topK int, filter Filter) ([]model.RetrievedDocument, error) {
	if topK <= 0 {
		return nil, helper.NewError("search documents", fmt.Errorf("%w: topK must be positive, got %v", model.ErrInvalidArgument, topK))
	}
	if len(embedding) != m.dimension {
		return nil, helper.NewError("search documents", fmt.Errorf("%w: got %v, store expects %v", model.ErrDimensionMismatch, len(embedding), m.dimension))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]model.RetrievedDocument, 0, len(m.documents))
	for _, doc := range m.documents {
		if filter.Category != "" && doc.Category != filter.Category {
			continue
		}
		similarity := cosineSimilarity(embedding, doc.Embedding)
		if similarity < filter.MinSimilarity {
			continue
		}
		hit := cloneDocument(doc)
		hit.Similarity = &similarity
		results = append(results, model.RetrievedDocument{Document: hit, Similarity: similarity})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		if results[i].Document.Version != results[j].Document.Version {
			return results[i].Document.Version > results[j].Document.Version
		}
		return results[i].Document.IdentityKey < results[j].Document.IdentityKey
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored documents, optionally per category.
func (m *MemoryStore) Count(ctx context.Context, category model.Category) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if category == "" {
		return len(m.documents), nil
	}
	count := 0
	for _, doc := range m.documents {
		if doc.Category == category {
			count++
		}
	}
	return count, nil
}

// Delete removes the document for the identity key.
func (m *MemoryStore) Delete(ctx context.Context, identityKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.documents[identityKey]; !ok {
		return helper.NewError("delete document", fmt.Errorf("%w: %v", model.ErrNotFound, identityKey))
	}
	delete(m.documents, identityKey)
	return nil
}

func cloneDocument(doc *model.Document) *model.Document {
	clone := *doc
	if doc.Embedding != nil {
		clone.Embedding = make([]float32, len(doc.Embedding))
		copy(clone.Embedding, doc.Embedding)
	}
	if doc.Metadata != nil {
		clone.Metadata = make(model.Metadata, len(doc.Metadata))
		for k, v := range doc.Metadata {
			clone.Metadata[k] = v
		}
	}
	if doc.Similarity != nil {
		similarity := *doc.Similarity
		clone.Similarity = &similarity
	}
	return &clone
}

func cosineSimilarity(a []float32, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
