package driving

import (
	"context"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// LibraryService manages the owner's ingested documents.
type LibraryService interface {
	// ListDocuments returns documents with artifact counts, newest first.
	ListDocuments(ctx context.Context, owner domain.OwnerID) ([]domain.DocumentSummary, error)

	// GetDocument retrieves a document.
	GetDocument(ctx context.Context, owner domain.OwnerID, id string) (*domain.Document, error)

	// GetDocumentText returns the document's chunks in order.
	GetDocumentText(ctx context.Context, owner domain.OwnerID, id string) ([]domain.TextChunk, error)

	// DeleteDocument removes a document, its chunks and its artifacts.
	DeleteDocument(ctx context.Context, owner domain.OwnerID, id string) error
}

// NoteRenderer turns stored Markdown notes into sanitised HTML.
type NoteRenderer interface {
	// RenderNoteHTML returns the note body as HTML safe to embed in a page.
	RenderNoteHTML(ctx context.Context, owner domain.OwnerID, id string) (string, error)
}
