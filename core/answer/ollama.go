package answer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const defaultOllamaModel = "llama3.2"

// OllamaBackend answers questions through a local Ollama server.
type OllamaBackend struct {
	client *api.Client
	model  string
}

// NewOllamaBackend creates the local backend. An empty host uses the
// OLLAMA_HOST environment variable, an empty modelName uses llama3.2.
func NewOllamaBackend(host string, modelName string) (*OllamaBackend, error) {
	if modelName == "" {
		modelName = defaultOllamaModel
	}

	var client *api.Client
	if host == "" {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create client from environment: %w", err)
		}
	} else {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid host URL: %w", err)
		}
		client = api.NewClient(u, http.DefaultClient)
	}

	return &OllamaBackend{
		client: client,
		model:  modelName,
	}, nil
}

// Name identifies the backend in query results.
func (b *OllamaBackend) Name() string {
	return "ollama"
}

// Generate answers the question using only the provided context text.
func (b *OllamaBackend) Generate(ctx context.Context, question string, contextText string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: b.model,
		Messages: []api.Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: UserPrompt(question, contextText)},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": 0.2,
		},
	}

	var answer strings.Builder
	err := b.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		answer.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to chat with ollama: %w", err)
	}
	if answer.Len() == 0 {
		return "", fmt.Errorf("no answer generated")
	}

	return answer.String(), nil
}
