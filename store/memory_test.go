package store

import (
	"context"
	"testing"
	"time"

	"github.com/siherrmann/etfrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument(identityKey string, category model.Category, content string, embedding []float32) *model.Document {
	return &model.Document{
		IdentityKey: identityKey,
		Name:        "Test " + identityKey,
		Category:    category,
		Source:      model.SourceDomesticListing,
		Content:     content,
		ContentHash: model.ComputeContentHash(content),
		Version:     1,
		Embedding:   embedding,
		CollectedAt: time.Now(),
	}
}

func TestNewMemoryStore(t *testing.T) {
	t.Run("Create store with valid dimension", func(t *testing.T) {
		s, err := NewMemoryStore(3)
		require.NoError(t, err)
		assert.Equal(t, 3, s.Dimension())
	})

	t.Run("Create store with invalid dimension", func(t *testing.T) {
		_, err := NewMemoryStore(0)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})
}

func TestMemoryStoreUpsert(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryStore(3)
	require.NoError(t, err)

	t.Run("Insert new document", func(t *testing.T) {
		doc := newTestDocument("KR_069500", model.CategoryDomestic, "KODEX 200 tracks KOSPI 200", []float32{1, 0, 0})
		stored, err := s.Upsert(ctx, doc)
		require.NoError(t, err)
		assert.NotZero(t, stored.ID, "stored document should get an id")
		assert.NotEqual(t, stored.RID.String(), "00000000-0000-0000-0000-000000000000", "stored document should get a rid")
		assert.Equal(t, 1, stored.Version)
	})

	t.Run("Upsert same key keeps id and rid", func(t *testing.T) {
		first, err := s.Get(ctx, "KR_069500")
		require.NoError(t, err)

		updated := newTestDocument("KR_069500", model.CategoryDomestic, "KODEX 200 tracks KOSPI 200, fee changed", []float32{1, 0, 0})
		updated.Version = 2
		stored, err := s.Upsert(ctx, updated)
		require.NoError(t, err)
		assert.Equal(t, first.ID, stored.ID, "update should keep the original id")
		assert.Equal(t, first.RID, stored.RID, "update should keep the original rid")
		assert.Equal(t, 2, stored.Version)

		count, err := s.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, count, "upsert on the same key should not create a new row")
	})

	t.Run("Upsert with wrong dimension", func(t *testing.T) {
		doc := newTestDocument("KR_102110", model.CategoryDomestic, "TIGER 200", []float32{1, 0})
		_, err := s.Upsert(ctx, doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrDimensionMismatch)
	})

	t.Run("Upsert without identity key", func(t *testing.T) {
		doc := newTestDocument("", model.CategoryDomestic, "no key", []float32{1, 0, 0})
		_, err := s.Upsert(ctx, doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})

	t.Run("Stored document is isolated from caller mutations", func(t *testing.T) {
		doc := newTestDocument("KR_277630", model.CategoryDomestic, "original content", []float32{0, 1, 0})
		_, err := s.Upsert(ctx, doc)
		require.NoError(t, err)

		doc.Content = "mutated after upsert"
		doc.Embedding[0] = 99

		stored, err := s.Get(ctx, "KR_277630")
		require.NoError(t, err)
		assert.Equal(t, "original content", stored.Content)
		assert.Equal(t, float32(0), stored.Embedding[0])
	})
}

func TestMemoryStoreGet(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryStore(3)
	require.NoError(t, err)

	t.Run("Get missing document", func(t *testing.T) {
		_, err := s.Get(ctx, "KR_000000")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Get existing document", func(t *testing.T) {
		doc := newTestDocument("US_SPY", model.CategoryForeign, "SPY tracks the S&P 500", []float32{0, 0, 1})
		doc.Source = model.SourceForeignListing
		_, err := s.Upsert(ctx, doc)
		require.NoError(t, err)

		found, err := s.Get(ctx, "US_SPY")
		require.NoError(t, err)
		assert.Equal(t, "US_SPY", found.IdentityKey)
		assert.Equal(t, model.CategoryForeign, found.Category)
	})
}

func TestMemoryStoreSearch(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryStore(3)
	require.NoError(t, err)

	docs := []*model.Document{
		newTestDocument("KR_069500", model.CategoryDomestic, "KODEX 200", []float32{1, 0, 0}),
		newTestDocument("KR_102110", model.CategoryDomestic, "TIGER 200", []float32{0.9, 0.1, 0}),
		newTestDocument("US_SPY", model.CategoryForeign, "SPY", []float32{0, 1, 0}),
	}
	docs[2].Category = model.CategoryForeign
	docs[2].Source = model.SourceForeignListing
	for _, doc := range docs {
		_, err := s.Upsert(ctx, doc)
		require.NoError(t, err)
	}

	t.Run("Search orders by similarity descending", func(t *testing.T) {
		results, err := s.Search(ctx, []float32{1, 0, 0}, 10, Filter{})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "KR_069500", results[0].Document.IdentityKey)
		assert.Equal(t, "KR_102110", results[1].Document.IdentityKey)
		assert.Equal(t, "US_SPY", results[2].Document.IdentityKey)
		assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
		assert.GreaterOrEqual(t, results[1].Similarity, results[2].Similarity)
	})

	t.Run("Search respects topK", func(t *testing.T) {
		results, err := s.Search(ctx, []float32{1, 0, 0}, 2, Filter{})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("Search with topK larger than corpus returns all", func(t *testing.T) {
		results, err := s.Search(ctx, []float32{1, 0, 0}, 50, Filter{})
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("Search filters by category", func(t *testing.T) {
		results, err := s.Search(ctx, []float32{1, 0, 0}, 10, Filter{Category: model.CategoryForeign})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "US_SPY", results[0].Document.IdentityKey)
	})

	t.Run("Search applies similarity floor", func(t *testing.T) {
		results, err := s.Search(ctx, []float32{1, 0, 0}, 10, Filter{MinSimilarity: 0.5})
		require.NoError(t, err)
		require.Len(t, results, 2, "orthogonal document should fall below the floor")
	})

	t.Run("Search breaks score ties deterministically", func(t *testing.T) {
		tieStore, err := NewMemoryStore(3)
		require.NoError(t, err)

		b := newTestDocument("KR_BBB", model.CategoryDomestic, "same direction b", []float32{1, 0, 0})
		a := newTestDocument("KR_AAA", model.CategoryDomestic, "same direction a", []float32{2, 0, 0})
		_, err = tieStore.Upsert(ctx, b)
		require.NoError(t, err)
		_, err = tieStore.Upsert(ctx, a)
		require.NoError(t, err)

		// Cosine similarity ignores magnitude, both score 1.0.
		for range 3 {
			results, err := tieStore.Search(ctx, []float32{1, 0, 0}, 10, Filter{})
			require.NoError(t, err)
			require.Len(t, results, 2)
			assert.Equal(t, "KR_AAA", results[0].Document.IdentityKey, "equal scores should order by identity key ascending")
			assert.Equal(t, "KR_BBB", results[1].Document.IdentityKey)
		}
	})

	t.Run("Search with invalid topK", func(t *testing.T) {
		_, err := s.Search(ctx, []float32{1, 0, 0}, 0, Filter{})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})

	t.Run("Search with wrong dimension", func(t *testing.T) {
		_, err := s.Search(ctx, []float32{1, 0}, 5, Filter{})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrDimensionMismatch)
	})

	t.Run("Search on empty store returns no hits", func(t *testing.T) {
		empty, err := NewMemoryStore(3)
		require.NoError(t, err)
		results, err := empty.Search(ctx, []float32{1, 0, 0}, 5, Filter{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestMemoryStoreCountAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryStore(3)
	require.NoError(t, err)

	domestic := newTestDocument("KR_069500", model.CategoryDomestic, "KODEX 200", []float32{1, 0, 0})
	foreign := newTestDocument("US_SPY", model.CategoryForeign, "SPY", []float32{0, 1, 0})
	foreign.Source = model.SourceForeignListing
	_, err = s.Upsert(ctx, domestic)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, foreign)
	require.NoError(t, err)

	t.Run("Count all documents", func(t *testing.T) {
		count, err := s.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Count by category", func(t *testing.T) {
		count, err := s.Count(ctx, model.CategoryDomestic)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Delete existing document", func(t *testing.T) {
		err := s.Delete(ctx, "US_SPY")
		require.NoError(t, err)

		count, err := s.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Delete missing document", func(t *testing.T) {
		err := s.Delete(ctx, "US_SPY")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
