package driven

import (
	"context"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// DocumentStore persists ingested documents.
// Every method is scoped to an owner: a document belonging to another
// owner behaves exactly like a missing one (domain.ErrNotFound).
type DocumentStore interface {
	// SaveDocument inserts a new document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, owner domain.OwnerID, id string) (*domain.Document, error)

	// ListDocuments returns the owner's documents with artifact counts, newest first.
	ListDocuments(ctx context.Context, owner domain.OwnerID) ([]domain.DocumentSummary, error)

	// DeleteDocument removes a document together with its chunks and every
	// artifact generated from it. The removal is atomic with respect to
	// concurrent retrievals.
	DeleteDocument(ctx context.Context, owner domain.OwnerID, id string) error
}

// ChunkStore persists chunks with their embeddings and answers similarity queries.
type ChunkStore interface {
	// StoreChunks saves chunks and their embeddings for a document the owner holds.
	// len(chunks) must equal len(embeddings) and all embeddings must share one
	// non-zero dimension, otherwise domain.ErrEmbeddingMismatch is returned and
	// nothing is stored. The write is all-or-nothing. model records which
	// embedding configuration produced the vectors.
	StoreChunks(ctx context.Context, owner domain.OwnerID, documentID, model string,
		chunks []domain.TextChunk, embeddings [][]float32) (int, error)

	// Retrieve returns the owner's chunks nearest to the query embedding,
	// ordered by ascending cosine distance, then chunk index.
	// No eligible chunks yields an empty slice and no error.
	Retrieve(ctx context.Context, q domain.RetrievalQuery) ([]domain.RetrievedChunk, error)

	// ListDocumentChunks returns up to limit chunks of a document in index order.
	ListDocumentChunks(ctx context.Context, owner domain.OwnerID, documentID string, limit int) ([]domain.TextChunk, error)
}

// ArtifactStore persists quizzes, flashcards and notes.
type ArtifactStore interface {
	// SaveQuiz inserts a quiz with its questions. Question IDs are assigned if empty.
	SaveQuiz(ctx context.Context, quiz *domain.Quiz) error

	// GetQuiz retrieves a quiz with its questions in order.
	GetQuiz(ctx context.Context, owner domain.OwnerID, id string) (*domain.Quiz, error)

	// ListQuizzes returns the owner's quizzes without questions, newest first.
	ListQuizzes(ctx context.Context, owner domain.OwnerID) ([]domain.Quiz, error)

	// SaveQuizAttempt records a graded attempt.
	SaveQuizAttempt(ctx context.Context, attempt *domain.QuizAttempt) error

	// ListQuizAttempts returns attempts for a quiz, newest first.
	ListQuizAttempts(ctx context.Context, owner domain.OwnerID, quizID string) ([]domain.QuizAttempt, error)

	// SaveFlashcardSet inserts a set with its cards. Card IDs are assigned if empty.
	SaveFlashcardSet(ctx context.Context, set *domain.FlashcardSet) error

	// GetFlashcardSet retrieves a set with its cards in order.
	GetFlashcardSet(ctx context.Context, owner domain.OwnerID, id string) (*domain.FlashcardSet, error)

	// ListFlashcardSets returns the owner's sets without cards, newest first.
	ListFlashcardSets(ctx context.Context, owner domain.OwnerID) ([]domain.FlashcardSet, error)

	// UpdateFlashcardMastery sets a card's mastery level.
	UpdateFlashcardMastery(ctx context.Context, owner domain.OwnerID, cardID string, level int) error

	// ReviewFlashcard logs a review and moves the card's mastery by
	// domain.NextMastery in one atomic step. ID and ReviewedAt are assigned
	// if empty; LevelBefore and LevelAfter are filled in.
	ReviewFlashcard(ctx context.Context, review *domain.FlashcardReview) error

	// SaveNote inserts a note.
	SaveNote(ctx context.Context, note *domain.Note) error

	// GetNote retrieves a note.
	GetNote(ctx context.Context, owner domain.OwnerID, id string) (*domain.Note, error)

	// ListNotes returns the owner's notes, newest first. A non-empty
	// documentID restricts the list to that document.
	ListNotes(ctx context.Context, owner domain.OwnerID, documentID string) ([]domain.Note, error)

	// UpdateNoteContent replaces a note's content and bumps UpdatedAt.
	UpdateNoteContent(ctx context.Context, owner domain.OwnerID, id, content string) error

	// DeleteNote removes a note.
	DeleteNote(ctx context.Context, owner domain.OwnerID, id string) error
}
