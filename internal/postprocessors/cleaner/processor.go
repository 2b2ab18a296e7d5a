package cleaner

import (
	"context"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor rewrites the source text with Clean.
// It must run before the chunker, since offsets refer to cleaned text.
type Processor struct{}

// New creates a new cleaner processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process cleans src.Text in place and passes chunks through unchanged.
func (p *Processor) Process(_ context.Context, src *domain.SourceText, chunks []domain.TextChunk) ([]domain.TextChunk, error) {
	if src == nil {
		return nil, domain.ErrInvalidInput
	}
	src.Text = Clean(src.Text)
	return chunks, nil
}
