package mcp

import (
	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Owner is the user every tool call acts for.
	Owner domain.OwnerID

	// RAG answers questions and retrieves chunks.
	RAG driving.RAGService

	// Ingest stores new documents.
	Ingest driving.IngestService

	// Library lists and reads documents.
	Library driving.LibraryService

	// Study generates quizzes and notes.
	Study driving.StudyService
}

// Validate ensures all required ports are set.
// Ingest, Library and Study are optional; their tools are only registered
// when present.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	if p.Owner.IsZero() {
		return ErrMissingOwner
	}
	return nil
}
