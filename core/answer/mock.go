package answer

import "context"

// MockBackend is a test backend that records the last prompt it received.
type MockBackend struct {
	Response     string
	Err          error
	LastQuestion string
	LastContext  string
	Calls        int
}

// Name identifies the backend in query results.
func (b *MockBackend) Name() string {
	return "mock"
}

// Generate returns the configured response or error.
func (b *MockBackend) Generate(ctx context.Context, question string, contextText string) (string, error) {
	b.Calls++
	b.LastQuestion = question
	b.LastContext = contextText
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if b.Err != nil {
		return "", b.Err
	}
	return b.Response, nil
}
