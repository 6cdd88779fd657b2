// Package retrieval implements the query side: embed the question, find the
// nearest documents, assemble the grounded context and generate an answer.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/siherrmann/etfrag/core/answer"
	"github.com/siherrmann/etfrag/core/pipeline"
	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
	"github.com/siherrmann/etfrag/store"
)

const defaultGenerationTimeout = 60 * time.Second

// Engine answers questions against the document store. Queries are read-only
// and safe to run concurrently, also while a collection run is writing.
type Engine struct {
	mu                sync.RWMutex
	store             store.VectorStore
	pipeline          *pipeline.Pipeline
	logger            *slog.Logger
	backends          map[string]answer.Backend
	defaultBackend    string
	generationTimeout time.Duration
}

// NewEngine creates a query engine over the given store and pipeline.
func NewEngine(st store.VectorStore, pl *pipeline.Pipeline, logger *slog.Logger) (*Engine, error) {
	if st == nil {
		return nil, helper.NewError("create engine", fmt.Errorf("%w: store required", model.ErrInvalidArgument))
	}
	if pl == nil {
		return nil, helper.NewError("create engine", fmt.Errorf("%w: pipeline required", model.ErrInvalidArgument))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:             st,
		pipeline:          pl,
		logger:            logger,
		backends:          map[string]answer.Backend{},
		generationTimeout: defaultGenerationTimeout,
	}, nil
}

// RegisterBackend adds an answer backend. The first registered backend
// becomes the default.
func (e *Engine) RegisterBackend(backend answer.Backend) error {
	if backend == nil || backend.Name() == "" {
		return helper.NewError("register backend", fmt.Errorf("%w: named backend required", model.ErrInvalidArgument))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.backends[backend.Name()]; ok {
		return helper.NewError("register backend", fmt.Errorf("%w: backend %v already registered", model.ErrInvalidArgument, backend.Name()))
	}
	e.backends[backend.Name()] = backend
	if e.defaultBackend == "" {
		e.defaultBackend = backend.Name()
	}
	return nil
}

// SetDefaultBackend selects which backend answers when the query does not
// name one.
func (e *Engine) SetDefaultBackend(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.backends[name]; !ok {
		return helper.NewError("set default backend", fmt.Errorf("%w: backend %v not registered", model.ErrInvalidArgument, name))
	}
	e.defaultBackend = name
	return nil
}

// SetGenerationTimeout bounds how long one answer generation may take.
func (e *Engine) SetGenerationTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return helper.NewError("set generation timeout", fmt.Errorf("%w: timeout must be positive, got %v", model.ErrInvalidArgument, timeout))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generationTimeout = timeout
	return nil
}

// Answer retrieves the documents closest to the question and generates a
// grounded answer. When generation fails the result still carries the
// retrieved sources and the returned error wraps ErrGenerationFailed.
func (e *Engine) Answer(ctx context.Context, question string, options model.QueryOptions) (*model.QueryResult, error) {
	normalized := pipeline.NormalizeText(question)
	if normalized == "" {
		return nil, helper.NewError("answer question", fmt.Errorf("%w: question must not be empty", model.ErrInvalidArgument))
	}
	if options.TopK <= 0 {
		return nil, helper.NewError("answer question", fmt.Errorf("%w: top k must be positive, got %v", model.ErrInvalidArgument, options.TopK))
	}

	backend, err := e.selectBackend(options.Backend)
	if err != nil {
		return nil, err
	}

	embedding, err := e.pipeline.Embed(ctx, normalized)
	if err != nil {
		return nil, err
	}

	sources, err := e.store.Search(ctx, embedding, options.TopK, store.Filter{
		Category:      options.Category,
		MinSimilarity: options.SimilarityFloor,
	})
	if err != nil {
		if errors.Is(err, model.ErrInvalidArgument) || errors.Is(err, model.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, helper.NewError("answer question", fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err))
	}

	budget := options.ContextBudget
	if budget <= 0 {
		budget = model.DefaultQueryOptions().ContextBudget
	}
	contextText, numSources := BuildContext(sources, budget)

	result := &model.QueryResult{
		Question:   normalized,
		Sources:    sources,
		NumSources: numSources,
		Backend:    backend.Name(),
	}

	e.logger.Debug("Retrieved documents for question",
		slog.Int("hits", len(sources)),
		slog.Int("in_context", numSources),
		slog.String("backend", backend.Name()),
	)

	generationCtx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	answerText, err := backend.Generate(generationCtx, normalized, contextText)
	if err != nil {
		result.GenerationFailed = true
		e.logger.Warn("Answer generation failed",
			slog.String("backend", backend.Name()),
			slog.String("error", err.Error()),
		)
		return result, helper.NewError("answer question", fmt.Errorf("%w: %v", model.ErrGenerationFailed, err))
	}
	result.Answer = answerText

	return result, nil
}

// Summary returns the stored document for one identity key, without any
// generation.
func (e *Engine) Summary(ctx context.Context, identityKey string) (*model.Document, error) {
	return e.store.Get(ctx, identityKey)
}

func (e *Engine) selectBackend(name string) (answer.Backend, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if name == "" {
		name = e.defaultBackend
	}
	if name == "" {
		return nil, helper.NewError("select backend", fmt.Errorf("%w: no backend registered", model.ErrInvalidArgument))
	}
	backend, ok := e.backends[name]
	if !ok {
		return nil, helper.NewError("select backend", fmt.Errorf("%w: backend %v not registered", model.ErrInvalidArgument, name))
	}
	return backend, nil
}

func (e *Engine) timeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generationTimeout
}
