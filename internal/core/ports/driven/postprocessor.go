package driven

import (
	"context"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// PostProcessor turns extracted document text into chunks.
// Processors are chained in a pipeline (e.g., cleaning, then chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes the document text and the chunks produced so far.
	// Text processors (e.g., cleaner) may rewrite src.Text and pass chunks through.
	// Chunk producers (e.g., chunker) read src.Text and return new chunks.
	Process(ctx context.Context, src *domain.SourceText, chunks []domain.TextChunk) ([]domain.TextChunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the text through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, src *domain.SourceText) ([]domain.TextChunk, error)
}
