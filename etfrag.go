// Package etfrag is a retrieval augmented question answering system for
// exchange traded funds. Source collectors feed a deduplicating ingestion
// pipeline that writes versioned documents into a vector store; the query
// side embeds a question, retrieves the closest documents and generates a
// grounded answer through a configurable backend.
package etfrag

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/etfrag/core/answer"
	"github.com/siherrmann/etfrag/core/ingest"
	"github.com/siherrmann/etfrag/core/pipeline"
	"github.com/siherrmann/etfrag/core/retrieval"
	"github.com/siherrmann/etfrag/database"
	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
	loadSql "github.com/siherrmann/etfrag/sql"
	"github.com/siherrmann/etfrag/store"
)

// Agent provides a unified interface to ingestion and retrieval.
type Agent struct {
	DB          *helper.Database // nil when running on the memory store
	Documents   store.VectorStore
	Pipeline    *pipeline.Pipeline
	Coordinator *ingest.Coordinator
	Engine      *retrieval.Engine
	// Logging
	log *slog.Logger
}

// NewAgent creates an agent backed by Postgres with pgvector. The documents
// table is created with the given embedding dimension.
func NewAgent(config *helper.DatabaseConfiguration, embeddingDim int) (*Agent, error) {
	logger := newLogger()

	// Initialize database
	db := helper.NewDatabase("etfrag", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	return &Agent{
		DB:        db,
		Documents: documents,
		log:       logger,
	}, nil
}

// NewAgentWithStore creates an agent on an existing store, typically the
// in-memory store for tests and small deployments.
func NewAgentWithStore(documents store.VectorStore) (*Agent, error) {
	if documents == nil {
		return nil, helper.NewError("create agent", fmt.Errorf("%w: store required", model.ErrInvalidArgument))
	}

	return &Agent{
		Documents: documents,
		log:       newLogger(),
	}, nil
}

func newLogger() *slog.Logger {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	return slog.New(helper.NewPrettyHandler(os.Stdout, opts))
}

// Close closes the database connection
func (a *Agent) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SetPipeline wires the embedding pipeline and creates the ingestion
// coordinator and query engine on top of it. The pipeline dimension must
// match the store dimension.
func (a *Agent) SetPipeline(p *pipeline.Pipeline) error {
	if p == nil {
		return helper.NewError("set pipeline", fmt.Errorf("%w: pipeline required", model.ErrInvalidArgument))
	}
	if p.Dimension != a.Documents.Dimension() {
		return helper.NewError("set pipeline", fmt.Errorf("%w: pipeline dimension %v, store dimension %v", model.ErrDimensionMismatch, p.Dimension, a.Documents.Dimension()))
	}

	coordinator, err := ingest.NewCoordinator(a.Documents, p, a.log)
	if err != nil {
		return helper.NewError("create coordinator", err)
	}
	engine, err := retrieval.NewEngine(a.Documents, p, a.log)
	if err != nil {
		return helper.NewError("create engine", err)
	}

	a.Pipeline = p
	a.Coordinator = coordinator
	a.Engine = engine
	return nil
}

// UseDefaultPipeline sets up the default local embedding pipeline with the
// all-MiniLM-L6-v2 model (384 dimensions).
func (a *Agent) UseDefaultPipeline() error {
	embedder, dimension, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	p, err := pipeline.NewPipeline(embedder, dimension)
	if err != nil {
		return helper.NewError("create default pipeline", err)
	}
	return a.SetPipeline(p)
}

// UseOpenAIPipeline sets up an embedding pipeline backed by the OpenAI
// embeddings API. An empty modelName uses text-embedding-3-small.
func (a *Agent) UseOpenAIPipeline(apiKey string, modelName string) error {
	embedder, dimension, err := pipeline.OpenAIEmbedder(apiKey, modelName)
	if err != nil {
		return helper.NewError("create openai embedder", err)
	}

	p, err := pipeline.NewPipeline(embedder, dimension)
	if err != nil {
		return helper.NewError("create openai pipeline", err)
	}
	return a.SetPipeline(p)
}

// RegisterCollector adds a source collector to the ingestion side.
func (a *Agent) RegisterCollector(collector ingest.SourceCollector) error {
	if a.Coordinator == nil {
		return helper.NewError("register collector", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	return a.Coordinator.Register(collector)
}

// RegisterBackend adds an answer backend to the query side. The first
// registered backend becomes the default.
func (a *Agent) RegisterBackend(backend answer.Backend) error {
	if a.Engine == nil {
		return helper.NewError("register backend", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	return a.Engine.RegisterBackend(backend)
}

// SetDefaultBackend selects which backend answers when the query does not
// name one.
func (a *Agent) SetDefaultBackend(name string) error {
	if a.Engine == nil {
		return helper.NewError("set default backend", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	return a.Engine.SetDefaultBackend(name)
}

// Collect runs one collection pass over the enabled sources. At most one
// run is active at a time, a concurrent trigger returns ErrRunInProgress.
func (a *Agent) Collect(ctx context.Context, options model.CollectOptions) (*model.CollectionRun, error) {
	if a.Coordinator == nil {
		return nil, helper.NewError("collect", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	return a.Coordinator.Run(ctx, options)
}

// CollectAll runs one collection pass over all sources.
func (a *Agent) CollectAll(ctx context.Context) (*model.CollectionRun, error) {
	return a.Collect(ctx, model.CollectOptions{Domestic: true, Foreign: true, Filing: true})
}

// Query answers a question against the stored documents. A nil options
// pointer uses the defaults, zero fields in a provided options struct are
// filled with the defaults.
func (a *Agent) Query(ctx context.Context, question string, options *model.QueryOptions) (*model.QueryResult, error) {
	if a.Engine == nil {
		return nil, helper.NewError("query", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	opts := model.DefaultQueryOptions()
	if options != nil {
		if options.TopK > 0 {
			opts.TopK = options.TopK
		}
		if options.ContextBudget > 0 {
			opts.ContextBudget = options.ContextBudget
		}
		opts.Category = options.Category
		opts.Backend = options.Backend
		opts.SimilarityFloor = options.SimilarityFloor
	}

	return a.Engine.Answer(ctx, question, opts)
}

// QueryDomestic answers a question using domestic listing documents only.
func (a *Agent) QueryDomestic(ctx context.Context, question string) (*model.QueryResult, error) {
	return a.Query(ctx, question, &model.QueryOptions{Category: model.CategoryDomestic})
}

// QueryForeign answers a question using foreign listing documents only.
func (a *Agent) QueryForeign(ctx context.Context, question string) (*model.QueryResult, error) {
	return a.Query(ctx, question, &model.QueryOptions{Category: model.CategoryForeign})
}

// QueryFilings answers a question using filing documents only.
func (a *Agent) QueryFilings(ctx context.Context, question string) (*model.QueryResult, error) {
	return a.Query(ctx, question, &model.QueryOptions{Category: model.CategoryFiling})
}

// Summary returns the stored document for one identity key.
func (a *Agent) Summary(ctx context.Context, identityKey string) (*model.Document, error) {
	return a.Documents.Get(ctx, identityKey)
}

// Status reports the store size and the last collection run.
func (a *Agent) Status(ctx context.Context) (*model.Status, error) {
	count, err := a.Documents.Count(ctx, "")
	if err != nil {
		return nil, helper.NewError("status", fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err))
	}

	status := &model.Status{DocumentCount: count}
	if a.Coordinator != nil {
		status.LastRun = a.Coordinator.LastRun()
	}
	return status, nil
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat.
// Only available on the Postgres backed store.
func (a *Agent) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	handler, ok := a.Documents.(*database.DocumentsDBHandler)
	if !ok {
		return helper.NewError("change index type", fmt.Errorf("%w: index tuning requires the database store", model.ErrInvalidArgument))
	}
	return handler.ChangeIndexType(ctx, indexType, params)
}
