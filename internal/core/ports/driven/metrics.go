package driven

import (
	"time"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// Metrics records pipeline activity.
// A nil Metrics is valid; services check before recording.
type Metrics interface {
	// DocumentIngested counts a successful ingestion and its chunk count.
	DocumentIngested(kind domain.SourceKind, chunks int)

	// ChunksRetrieved records how many chunks a retrieval returned.
	ChunksRetrieved(n int)

	// GenerationTransition counts a generation state change for a task
	// ("answer", "quiz", "flashcards", "notes").
	GenerationTransition(task string, state domain.GenerationState)

	// GenerationDuration records the provider round trip for a task.
	GenerationDuration(task string, d time.Duration)
}
