package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist or is not
	// owned by the caller. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingOwner indicates an operation was called without an owner identity.
	ErrMissingOwner = errors.New("owner identity is required")

	// ErrEmptyQuery indicates a retrieval or answer request without query text.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrConfiguration indicates a fatal configuration problem, such as
	// missing provider credentials. It is never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidChunkConfig indicates a chunk size / overlap combination
	// that cannot produce progress.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrEmbeddingMismatch indicates chunks and embeddings of different
	// lengths, or embeddings of inconsistent dimension.
	ErrEmbeddingMismatch = errors.New("chunks and embeddings do not match")

	// ErrNoContent indicates a document yielded no usable text.
	ErrNoContent = errors.New("no content found in document")

	// ErrUnsupportedSource indicates a source kind, URL scheme or file
	// format that cannot be ingested.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrGenerationParse indicates generation output that could not be
	// decoded into the expected structure.
	ErrGenerationParse = errors.New("generation output could not be parsed")

	// ErrEmptyResponse indicates the generation provider returned no text.
	ErrEmptyResponse = errors.New("provider returned an empty response")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
