package pipeline

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIEmbeddingDim is the dimension of the text-embedding-3-small model
// used by default.
const OpenAIEmbeddingDim = 1536

// OpenAIEmbedder creates an embedder backed by the OpenAI embeddings API.
// An empty modelName uses text-embedding-3-small.
func OpenAIEmbedder(apiKey string, modelName string) (EmbedFunc, int, error) {
	if apiKey == "" {
		return nil, 0, fmt.Errorf("openai api key required")
	}
	embeddingModel := openai.EmbeddingModelTextEmbedding3Small
	if modelName != "" {
		embeddingModel = openai.EmbeddingModel(modelName)
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfString: openai.String(text),
			},
			Model: embeddingModel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		embedding := make([]float32, len(resp.Data[0].Embedding))
		for i, v := range resp.Data[0].Embedding {
			embedding[i] = float32(v)
		}
		return embedding, nil
	}, OpenAIEmbeddingDim, nil
}
