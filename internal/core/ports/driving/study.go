package driving

import (
	"context"
	"time"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// StudyService generates and manages quizzes, flashcards and notes.
type StudyService interface {
	// GenerateQuiz creates and stores a multiple-choice quiz for a document.
	GenerateQuiz(ctx context.Context, owner domain.OwnerID, req QuizRequest) (*domain.Quiz, error)

	// GetQuiz retrieves a quiz with its questions.
	GetQuiz(ctx context.Context, owner domain.OwnerID, id string) (*domain.Quiz, error)

	// ListQuizzes returns the owner's quizzes.
	ListQuizzes(ctx context.Context, owner domain.OwnerID) ([]domain.Quiz, error)

	// SubmitQuiz grades answers (question ID to option index) and records the attempt.
	SubmitQuiz(ctx context.Context, owner domain.OwnerID, quizID string, answers map[string]int, duration time.Duration) (*domain.QuizAttempt, error)

	// ListQuizAttempts returns the recorded attempts for a quiz.
	ListQuizAttempts(ctx context.Context, owner domain.OwnerID, quizID string) ([]domain.QuizAttempt, error)

	// PreviewFlashcards generates cards without storing them.
	PreviewFlashcards(ctx context.Context, owner domain.OwnerID, req FlashcardRequest) ([]domain.Flashcard, error)

	// GenerateFlashcards generates and stores a flashcard set.
	GenerateFlashcards(ctx context.Context, owner domain.OwnerID, req FlashcardRequest) (*domain.FlashcardSet, error)

	// SaveFlashcardSet stores user-provided or edited cards.
	SaveFlashcardSet(ctx context.Context, owner domain.OwnerID, req NewFlashcardSet) (*domain.FlashcardSet, error)

	// GetFlashcardSet retrieves a set with its cards.
	GetFlashcardSet(ctx context.Context, owner domain.OwnerID, id string) (*domain.FlashcardSet, error)

	// ListFlashcardSets returns the owner's sets.
	ListFlashcardSets(ctx context.Context, owner domain.OwnerID) ([]domain.FlashcardSet, error)

	// UpdateFlashcardMastery sets a card's mastery, clamped to 0..5.
	UpdateFlashcardMastery(ctx context.Context, owner domain.OwnerID, cardID string, level int) error

	// ReviewFlashcard records a 1..5 rating for a card and moves its mastery
	// one step: up for 4 or 5, down for 1 or 2.
	ReviewFlashcard(ctx context.Context, owner domain.OwnerID, cardID string, rating int) (*domain.FlashcardReview, error)

	// GenerateNotes creates and stores Markdown notes for a document.
	GenerateNotes(ctx context.Context, owner domain.OwnerID, req NoteRequest) (*domain.Note, error)

	// GetNote retrieves a note.
	GetNote(ctx context.Context, owner domain.OwnerID, id string) (*domain.Note, error)

	// ListNotes returns the owner's notes, optionally for one document.
	ListNotes(ctx context.Context, owner domain.OwnerID, documentID string) ([]domain.Note, error)

	// UpdateNote replaces a note's content.
	UpdateNote(ctx context.Context, owner domain.OwnerID, id, content string) error

	// DeleteNote removes a note.
	DeleteNote(ctx context.Context, owner domain.OwnerID, id string) error
}

// QuizRequest configures quiz generation.
type QuizRequest struct {
	DocumentID   string
	NumQuestions int
	Difficulty   domain.Difficulty
	Title        string
}

// FlashcardRequest configures flashcard generation.
type FlashcardRequest struct {
	DocumentID string
	NumCards   int
	Title      string
}

// NewFlashcardSet describes cards to store as a set.
type NewFlashcardSet struct {
	Title      string
	DocumentID string
	Cards      []domain.Flashcard
}

// NoteRequest configures note generation.
type NoteRequest struct {
	DocumentID string
	Style      domain.NoteStyle
	Title      string
}
