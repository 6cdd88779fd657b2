// Package answer generates grounded answers from retrieved document context.
// Backends are interchangeable: the remote backend calls the OpenAI chat API,
// the local backend talks to an Ollama server.
package answer

import (
	"context"
	"fmt"

	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
)

// SystemPrompt constrains generation to the retrieved documents. Backends
// send it unchanged so remote and local answers follow the same rules.
const SystemPrompt = `You are an assistant answering questions about exchange traded funds.
Answer using only the information in the provided documents.
Cite the documents you used as [Document N].
If the documents do not contain the answer, say so instead of guessing.`

// Backend generates an answer to a question from the given document context.
type Backend interface {
	// Name identifies the backend in query results.
	Name() string
	// Generate answers the question using only the provided context text.
	Generate(ctx context.Context, question string, contextText string) (string, error)
}

// UserPrompt composes the user message sent to every backend.
func UserPrompt(question string, contextText string) string {
	return fmt.Sprintf("Documents:\n%s\n\nQuestion: %s", contextText, question)
}

// Config holds the settings for constructing a backend.
type Config struct {
	APIKey string // remote backend API key
	Model  string // model name, empty uses the backend default
	Host   string // local backend host, empty uses OLLAMA_HOST
}

// New creates a backend by kind. "remote" and "openai" build the OpenAI
// backend, "local" and "ollama" the Ollama backend.
func New(kind string, config Config) (Backend, error) {
	switch kind {
	case "remote", "openai":
		return NewOpenAIBackend(config.APIKey, config.Model)
	case "local", "ollama":
		return NewOllamaBackend(config.Host, config.Model)
	default:
		return nil, helper.NewError("create backend", fmt.Errorf("%w: unknown backend kind %v", model.ErrInvalidArgument, kind))
	}
}
