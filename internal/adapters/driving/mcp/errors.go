// Package mcp provides an MCP (Model Context Protocol) server adapter for QuizBolt.
// It lets AI assistants ask grounded questions, ingest text and generate
// study material from the configured user's library.
package mcp

import (
	"errors"
	"fmt"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")

// ErrMissingOwner is returned when the server has no owner to act for.
var ErrMissingOwner = errors.New("mcp: owner is required")

// toolError rewrites core errors into messages an assistant can act on.
// The sentinel stays in the chain.
func toolError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%s: document or artifact not found: %w", op, err)
	case errors.Is(err, domain.ErrEmptyQuery):
		return fmt.Errorf("%s: a non-empty query is required: %w", op, err)
	case errors.Is(err, domain.ErrNoContent):
		return fmt.Errorf("%s: no usable text in the input: %w", op, err)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedSource):
		return fmt.Errorf("%s: invalid arguments: %w", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
