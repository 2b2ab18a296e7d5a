package services

import (
	"context"
	"fmt"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// Ensure LibraryService implements the interfaces.
var (
	_ driving.LibraryService = (*LibraryService)(nil)
	_ driving.NoteRenderer   = (*LibraryService)(nil)
)

// LibraryService manages the owner's documents and renders their notes.
type LibraryService struct {
	docs      driven.DocumentStore
	chunks    driven.ChunkStore
	artifacts driven.ArtifactStore
	sanitizer *bluemonday.Policy
}

// NewLibraryService creates a new library service.
func NewLibraryService(docs driven.DocumentStore, chunks driven.ChunkStore, artifacts driven.ArtifactStore) *LibraryService {
	return &LibraryService{
		docs:      docs,
		chunks:    chunks,
		artifacts: artifacts,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// ListDocuments returns documents with artifact counts, newest first.
func (s *LibraryService) ListDocuments(ctx context.Context, owner domain.OwnerID) ([]domain.DocumentSummary, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.docs.ListDocuments(ctx, owner)
}

// GetDocument retrieves a document.
func (s *LibraryService) GetDocument(ctx context.Context, owner domain.OwnerID, id string) (*domain.Document, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.docs.GetDocument(ctx, owner, id)
}

// GetDocumentText returns every chunk of the document in index order.
func (s *LibraryService) GetDocumentText(ctx context.Context, owner domain.OwnerID, id string) ([]domain.TextChunk, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.chunks.ListDocumentChunks(ctx, owner, id, 0)
}

// DeleteDocument removes a document, its chunks and its artifacts.
func (s *LibraryService) DeleteDocument(ctx context.Context, owner domain.OwnerID, id string) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if err := s.docs.DeleteDocument(ctx, owner, id); err != nil {
		return err
	}
	logger.Info("Deleted document %s", id)
	return nil
}

// RenderNoteHTML renders a note's Markdown and sanitises the result.
func (s *LibraryService) RenderNoteHTML(ctx context.Context, owner domain.OwnerID, id string) (string, error) {
	if err := owner.Validate(); err != nil {
		return "", err
	}
	note, err := s.artifacts.GetNote(ctx, owner, id)
	if err != nil {
		return "", fmt.Errorf("load note: %w", err)
	}
	return s.RenderMarkdown(note.Content), nil
}

// RenderMarkdown converts Markdown to HTML with the UGC sanitising policy applied.
func (s *LibraryService) RenderMarkdown(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(s.sanitizer.SanitizeBytes(markdown.Render(doc, renderer)))
}
