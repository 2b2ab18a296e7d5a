package httpapi

import (
	"context"
	"time"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

type mockIngestService struct {
	result    *driving.IngestResult
	err       error
	lastOwner domain.OwnerID
	lastReq   driving.IngestRequest
}

func (m *mockIngestService) Ingest(_ context.Context, owner domain.OwnerID, req driving.IngestRequest) (*driving.IngestResult, error) {
	m.lastOwner, m.lastReq = owner, req
	return m.result, m.err
}

type mockLibraryService struct {
	documents []domain.DocumentSummary
	document  *domain.Document
	chunks    []domain.TextChunk
	err       error
	deleted   string
}

func (m *mockLibraryService) ListDocuments(_ context.Context, _ domain.OwnerID) ([]domain.DocumentSummary, error) {
	return m.documents, m.err
}

func (m *mockLibraryService) GetDocument(_ context.Context, _ domain.OwnerID, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockLibraryService) GetDocumentText(_ context.Context, _ domain.OwnerID, _ string) ([]domain.TextChunk, error) {
	return m.chunks, m.err
}

func (m *mockLibraryService) DeleteDocument(_ context.Context, _ domain.OwnerID, id string) error {
	m.deleted = id
	return m.err
}

type mockNoteRenderer struct {
	html string
	err  error
}

func (m *mockNoteRenderer) RenderNoteHTML(_ context.Context, _ domain.OwnerID, _ string) (string, error) {
	return m.html, m.err
}

type mockRAGService struct {
	chunks  []domain.RetrievedChunk
	answer  *domain.Answer
	err     error
	lastReq driving.RetrieveRequest
	lastAsk driving.AnswerRequest
}

func (m *mockRAGService) Retrieve(_ context.Context, _ domain.OwnerID, req driving.RetrieveRequest) ([]domain.RetrievedChunk, error) {
	m.lastReq = req
	return m.chunks, m.err
}

func (m *mockRAGService) Answer(_ context.Context, _ domain.OwnerID, req driving.AnswerRequest) (*domain.Answer, error) {
	m.lastAsk = req
	return m.answer, m.err
}

type mockStudyService struct {
	quiz     *domain.Quiz
	quizzes  []domain.Quiz
	attempt  *domain.QuizAttempt
	attempts []domain.QuizAttempt
	cards    []domain.Flashcard
	set      *domain.FlashcardSet
	sets     []domain.FlashcardSet
	note     *domain.Note
	notes    []domain.Note
	err      error

	lastQuiz     driving.QuizRequest
	lastAnswers  map[string]int
	lastDuration time.Duration
	lastSave     driving.NewFlashcardSet
	lastLevel    int
	lastRating   int
	lastContent  string
	lastDocument string
}

func (m *mockStudyService) GenerateQuiz(_ context.Context, _ domain.OwnerID, req driving.QuizRequest) (*domain.Quiz, error) {
	m.lastQuiz = req
	return m.quiz, m.err
}

func (m *mockStudyService) GetQuiz(_ context.Context, _ domain.OwnerID, _ string) (*domain.Quiz, error) {
	return m.quiz, m.err
}

func (m *mockStudyService) ListQuizzes(_ context.Context, _ domain.OwnerID) ([]domain.Quiz, error) {
	return m.quizzes, m.err
}

func (m *mockStudyService) SubmitQuiz(_ context.Context, _ domain.OwnerID, _ string, answers map[string]int, d time.Duration) (*domain.QuizAttempt, error) {
	m.lastAnswers, m.lastDuration = answers, d
	return m.attempt, m.err
}

func (m *mockStudyService) ListQuizAttempts(_ context.Context, _ domain.OwnerID, _ string) ([]domain.QuizAttempt, error) {
	return m.attempts, m.err
}

func (m *mockStudyService) PreviewFlashcards(_ context.Context, _ domain.OwnerID, _ driving.FlashcardRequest) ([]domain.Flashcard, error) {
	return m.cards, m.err
}

func (m *mockStudyService) GenerateFlashcards(_ context.Context, _ domain.OwnerID, _ driving.FlashcardRequest) (*domain.FlashcardSet, error) {
	return m.set, m.err
}

func (m *mockStudyService) SaveFlashcardSet(_ context.Context, _ domain.OwnerID, req driving.NewFlashcardSet) (*domain.FlashcardSet, error) {
	m.lastSave = req
	return m.set, m.err
}

func (m *mockStudyService) GetFlashcardSet(_ context.Context, _ domain.OwnerID, _ string) (*domain.FlashcardSet, error) {
	return m.set, m.err
}

func (m *mockStudyService) ListFlashcardSets(_ context.Context, _ domain.OwnerID) ([]domain.FlashcardSet, error) {
	return m.sets, m.err
}

func (m *mockStudyService) UpdateFlashcardMastery(_ context.Context, _ domain.OwnerID, _ string, level int) error {
	m.lastLevel = level
	return m.err
}

func (m *mockStudyService) ReviewFlashcard(_ context.Context, _ domain.OwnerID, id string,
	rating int) (*domain.FlashcardReview, error) {
	m.lastRating = rating
	if m.err != nil {
		return nil, m.err
	}
	return &domain.FlashcardReview{ID: "r1", CardID: id, Rating: rating, LevelBefore: 2,
		LevelAfter: domain.NextMastery(2, rating), ReviewedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (m *mockStudyService) GenerateNotes(_ context.Context, _ domain.OwnerID, _ driving.NoteRequest) (*domain.Note, error) {
	return m.note, m.err
}

func (m *mockStudyService) GetNote(_ context.Context, _ domain.OwnerID, _ string) (*domain.Note, error) {
	return m.note, m.err
}

func (m *mockStudyService) ListNotes(_ context.Context, _ domain.OwnerID, documentID string) ([]domain.Note, error) {
	m.lastDocument = documentID
	return m.notes, m.err
}

func (m *mockStudyService) UpdateNote(_ context.Context, _ domain.OwnerID, _, content string) error {
	m.lastContent = content
	return m.err
}

func (m *mockStudyService) DeleteNote(_ context.Context, _ domain.OwnerID, _ string) error {
	return m.err
}
