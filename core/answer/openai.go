package answer

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIBackend answers questions through the OpenAI chat completions API.
type OpenAIBackend struct {
	client openai.Client
	model  string
}

// NewOpenAIBackend creates the remote backend. An empty modelName uses
// gpt-4o-mini.
func NewOpenAIBackend(apiKey string, modelName string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key required")
	}
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	return &OpenAIBackend{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  modelName,
	}, nil
}

// Name identifies the backend in query results.
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Generate answers the question using only the provided context text.
func (b *OpenAIBackend) Generate(ctx context.Context, question string, contextText string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(UserPrompt(question, contextText)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no answer generated")
	}

	return resp.Choices[0].Message.Content, nil
}
