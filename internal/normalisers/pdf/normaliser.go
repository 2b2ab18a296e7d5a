// Package pdf extracts text from PDF documents with langchaingo's PDF loader.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// PageLoader returns the text of each page of a PDF.
type PageLoader func(ctx context.Context, r io.ReaderAt, size int64) ([]string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	load PageLoader
}

// New creates a PDF normaliser backed by langchaingo.
func New() *Normaliser {
	return &Normaliser{load: loadPages}
}

// NewWithLoader creates a PDF normaliser with a custom page loader.
func NewWithLoader(load PageLoader) *Normaliser {
	return &Normaliser{load: load}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page, separating pages with a blank line.
// Page-number lines left behind are removed later by the cleaner.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, domain.ErrInvalidInput
	}

	pages, err := n.load(ctx, bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: read pdf: %v", domain.ErrInvalidInput, err)
	}

	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			texts = append(texts, p)
		}
	}

	return &driven.NormaliseResult{
		Title:  extractTitle(raw),
		Text:   strings.Join(texts, "\n\n"),
		Format: "pdf",
	}, nil
}

func loadPages(ctx context.Context, r io.ReaderAt, size int64) ([]string, error) {
	docs, err := documentloaders.NewPDF(r, size).Load(ctx)
	if err != nil {
		return nil, err
	}
	pages := make([]string, len(docs))
	for i, d := range docs {
		pages[i] = d.PageContent
	}
	return pages, nil
}

// extractTitle uses metadata["title"] when present, else the file name.
func extractTitle(raw *domain.RawDocument) string {
	if title, ok := raw.Metadata["title"].(string); ok && title != "" {
		return title
	}
	if raw.URI == "" {
		return ""
	}
	filename := filepath.Base(raw.URI)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}
