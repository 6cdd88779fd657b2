package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Category classifies a document by the market segment it describes.
type Category string

const (
	CategoryDomestic Category = "domestic"
	CategoryForeign  Category = "foreign"
	CategoryFiling   Category = "filing"
)

// SourceID identifies one upstream data source.
type SourceID string

const (
	SourceDomesticListing SourceID = "domestic_listing"
	SourceForeignListing  SourceID = "foreign_listing"
	SourceFiling          SourceID = "filing"
)

// KeyPrefix returns the identity key prefix for documents from this source.
// Keys are source-qualified so the same ticker observed by two sources never
// collides in the store.
func (s SourceID) KeyPrefix() string {
	switch s {
	case SourceDomesticListing:
		return "KR"
	case SourceForeignListing:
		return "US"
	case SourceFiling:
		return "DART"
	default:
		return "SRC"
	}
}

// Document is the unit of retrieval: one fact about one ETF from one source.
type Document struct {
	ID          int64     `json:"id"`
	RID         uuid.UUID `json:"rid"`
	IdentityKey string    `json:"identity_key"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Source      SourceID  `json:"source"`
	Content     string    `json:"content"`
	ContentHash string    `json:"content_hash"`
	Version     int       `json:"version"`
	Embedding   []float32 `json:"embedding,omitempty"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CollectedAt time.Time `json:"collected_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// Result field, only set on documents returned from a similarity search
	Similarity *float64 `json:"similarity,omitempty"`
}

// NewIdentityKey derives the deterministic store key for a fact observed by a
// source. The same (source, naturalKey) pair always maps to the same key, so
// re-collection hits the same store slot instead of fanning out duplicates.
func NewIdentityKey(source SourceID, naturalKey string) string {
	return source.KeyPrefix() + "_" + naturalKey
}

// ComputeContentHash hashes the textual payload. Equal hashes mean a
// re-collection observed nothing new, so no write or re-embedding is needed.
func ComputeContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// SimilarityValue returns the search similarity or 0 if the document was not
// produced by a search.
func (d *Document) SimilarityValue() float64 {
	if d.Similarity == nil {
		return 0
	}
	return *d.Similarity
}
