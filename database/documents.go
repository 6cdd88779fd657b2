// Package database implements the Postgres-backed document store on top of
// pgvector. All table access goes through the SQL functions loaded by the
// sql package.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/model"
	loadSql "github.com/siherrmann/etfrag/sql"
	"github.com/siherrmann/etfrag/store"
)

// DocumentsDBHandler handles document-related database operations. It
// implements store.VectorStore.
type DocumentsDBHandler struct {
	db        *helper.Database
	dimension int
}

var _ store.VectorStore = &DocumentsDBHandler{}

// NewDocumentsDBHandler creates a new documents database handler.
// It loads the document-related SQL functions and creates the table with the
// given embedding dimension. If force is true, it will reload the SQL
// functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, embeddingDim int, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("%w: embedding dimension must be positive, got %v", model.ErrInvalidArgument, embeddingDim))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db:        db,
		dimension: embeddingDim,
	}

	err := loadSql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the documents table in the database.
// If the table already exists, it does not create it again.
// It also creates the category and vector indexes.
func (h *DocumentsDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init documents table", err)
	}

	h.db.Logger.Info("Checked/created table etf_documents")

	return nil
}

// Dimension returns the embedding dimension the table was created with.
func (h *DocumentsDBHandler) Dimension() int {
	return h.dimension
}

// Upsert inserts a document or overwrites the existing row with the same
// identity key. Concurrent writers to the same key serialize on the unique
// index, the later write wins.
func (h *DocumentsDBHandler) Upsert(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if doc == nil || doc.IdentityKey == "" {
		return nil, helper.NewError("upsert document", fmt.Errorf("%w: document with identity key required", model.ErrInvalidArgument))
	}
	if len(doc.Embedding) != h.dimension {
		return nil, helper.NewError("upsert document", fmt.Errorf("%w: got %v, store expects %v", model.ErrDimensionMismatch, len(doc.Embedding), h.dimension))
	}

	collectedAt := doc.CollectedAt
	if collectedAt.IsZero() {
		collectedAt = time.Now()
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM upsert_document($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		doc.IdentityKey,
		doc.Name,
		string(doc.Category),
		string(doc.Source),
		doc.Content,
		doc.ContentHash,
		doc.Version,
		pgvector.NewVector(doc.Embedding),
		doc.Metadata,
		collectedAt,
	)

	stored, err := scanDocument(row)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return stored, nil
}

// Get returns the document for the identity key or ErrNotFound.
func (h *DocumentsDBHandler) Get(ctx context.Context, identityKey string) (*model.Document, error) {
	if identityKey == "" {
		return nil, helper.NewError("get document", fmt.Errorf("%w: identity key required", model.ErrInvalidArgument))
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_document($1)`,
		identityKey,
	)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("get document", fmt.Errorf("%w: %v", model.ErrNotFound, identityKey))
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// Search returns up to topK documents ordered by cosine similarity
// descending, version descending, identity key ascending.
func (h *DocumentsDBHandler) Search(ctx context.Context, embedding []float32, topK int, filter store.Filter) ([]model.RetrievedDocument, error) {
	if topK <= 0 {
		return nil, helper.NewError("search documents", fmt.Errorf("%w: topK must be positive, got %v", model.ErrInvalidArgument, topK))
	}
	if len(embedding) != h.dimension {
		return nil, helper.NewError("search documents", fmt.Errorf("%w: got %v, store expects %v", model.ErrDimensionMismatch, len(embedding), h.dimension))
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_documents_by_similarity($1, $2, $3, $4)`,
		pgvector.NewVector(embedding),
		topK,
		string(filter.Category),
		filter.MinSimilarity,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	results := []model.RetrievedDocument{}
	for rows.Next() {
		doc := &model.Document{}
		var storedEmbedding pgvector.Vector
		var similarity float64
		err := rows.Scan(
			&doc.ID,
			&doc.RID,
			&doc.IdentityKey,
			&doc.Name,
			&doc.Category,
			&doc.Source,
			&doc.Content,
			&doc.ContentHash,
			&doc.Version,
			&storedEmbedding,
			&doc.Metadata,
			&doc.CollectedAt,
			&doc.UpdatedAt,
			&similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		doc.Embedding = storedEmbedding.Slice()
		doc.Similarity = &similarity
		results = append(results, model.RetrievedDocument{Document: doc, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("iterate rows", err)
	}

	return results, nil
}

// Count returns the number of stored documents, optionally per category.
func (h *DocumentsDBHandler) Count(ctx context.Context, category model.Category) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT count_documents($1)`,
		string(category),
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("count documents", err)
	}

	return count, nil
}

// Delete removes the document for the identity key or returns ErrNotFound.
func (h *DocumentsDBHandler) Delete(ctx context.Context, identityKey string) error {
	var deleted bool
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT delete_document($1)`,
		identityKey,
	).Scan(&deleted)
	if err != nil {
		return helper.NewError("delete document", err)
	}
	if !deleted {
		return helper.NewError("delete document", fmt.Errorf("%w: %v", model.ErrNotFound, identityKey))
	}

	return nil
}

func scanDocument(row *sql.Row) (*model.Document, error) {
	doc := &model.Document{}
	var storedEmbedding pgvector.Vector
	err := row.Scan(
		&doc.ID,
		&doc.RID,
		&doc.IdentityKey,
		&doc.Name,
		&doc.Category,
		&doc.Source,
		&doc.Content,
		&doc.ContentHash,
		&doc.Version,
		&storedEmbedding,
		&doc.Metadata,
		&doc.CollectedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Embedding = storedEmbedding.Slice()
	return doc, nil
}
