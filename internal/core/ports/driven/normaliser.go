package driven

import (
	"context"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// Normaliser extracts plain text from raw document bytes.
// Each normaliser handles specific MIME types (e.g., PDF, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers return 50-89, fallbacks 1-9.
	Priority() int

	// Normalise extracts text from a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Cleaning and chunking are handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Title is a title found in the document, if any.
	Title string

	// Text is the extracted text.
	Text string

	// Format names the detected format (e.g., "pdf", "docx").
	Format string
}

// URLFetcher downloads a web page for ingestion.
type URLFetcher interface {
	// Fetch retrieves the resource at rawURL. Only http and https are allowed.
	Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error)
}
