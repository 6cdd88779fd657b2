// Package pipeline turns collected document text into store-ready
// embeddings. One pipeline instance is shared by the ingestion coordinator
// and the retrieval engine so both sides embed with the same provider and
// dimension.
package pipeline

import (
	"context"
	"fmt"

	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
)

// EmbedFunc is a function that generates an embedding for one text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Pipeline combines normalization and embedding. Dimension is the vector
// length every embedding must have, it matches the store dimension.
type Pipeline struct {
	Embedder  EmbedFunc
	Dimension int
}

// NewPipeline creates a new embedding pipeline.
func NewPipeline(embedder EmbedFunc, dimension int) (*Pipeline, error) {
	if embedder == nil {
		return nil, helper.NewError("create pipeline", fmt.Errorf("%w: embedder required", model.ErrInvalidArgument))
	}
	if dimension <= 0 {
		return nil, helper.NewError("create pipeline", fmt.Errorf("%w: dimension must be positive, got %v", model.ErrInvalidArgument, dimension))
	}
	return &Pipeline{
		Embedder:  embedder,
		Dimension: dimension,
	}, nil
}

// Embed normalizes the text and generates its embedding. Provider failures
// surface as ErrEmbeddingUnavailable, a vector of the wrong length as
// ErrDimensionMismatch.
func (p *Pipeline) Embed(ctx context.Context, text string) ([]float32, error) {
	normalized := NormalizeText(text)
	if normalized == "" {
		return nil, helper.NewError("embed text", fmt.Errorf("%w: text must not be empty", model.ErrInvalidArgument))
	}

	embedding, err := p.Embedder(ctx, normalized)
	if err != nil {
		return nil, helper.NewError("embed text", fmt.Errorf("%w: %v", model.ErrEmbeddingUnavailable, err))
	}
	if len(embedding) != p.Dimension {
		return nil, helper.NewError("embed text", fmt.Errorf("%w: got %v, pipeline expects %v", model.ErrDimensionMismatch, len(embedding), p.Dimension))
	}

	return embedding, nil
}
