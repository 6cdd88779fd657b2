package model

import "errors"

// Failure taxonomy shared across the ingestion and query paths. Per-document
// and per-source failures are absorbed into run statistics; only these
// structural conditions propagate to callers.
var (
	// ErrRunInProgress rejects a collection trigger while another run is
	// active. Callers should retry later; the trigger never queues.
	ErrRunInProgress = errors.New("collection run already in progress")

	// ErrEmbeddingUnavailable means the embedding provider could not be
	// reached. Fatal for the single request or document that needed it.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrGenerationFailed means the answer backend errored or timed out. The
	// query result still carries the retrieved sources.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrInvalidArgument rejects a malformed request before any I/O.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreUnavailable is a structural fault affecting an entire run or
	// query.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch means an embedding does not match the store
	// dimension. This is a configuration fault, not a per-document error.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotFound means no document exists for the given identity key.
	ErrNotFound = errors.New("document not found")
)
