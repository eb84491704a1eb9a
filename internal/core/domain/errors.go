package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID indicates a document id is already registered
	// in the corpus.
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPayloadTooLarge indicates an ingestion batch exceeds the
	// configured maximum size. The whole batch is rejected before any
	// document is processed.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrTopKRange indicates a requested top_k is outside the
	// configured bounds. The query is not executed.
	ErrTopKRange = errors.New("top_k out of range")

	// ErrDimensionMismatch indicates a vector does not match the
	// engine's configured dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Neither ingestion nor search can run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorEngineUnavailable indicates the vector engine is not
	// configured.
	ErrVectorEngineUnavailable = errors.New("vector engine unavailable")
)
