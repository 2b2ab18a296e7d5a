package mcp

import (
	"context"
	"time"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	chunks    []domain.RetrievedChunk
	answer    *domain.Answer
	err       error
	lastOwner domain.OwnerID
	lastReq   driving.RetrieveRequest
	lastAsk   driving.AnswerRequest
}

func (m *mockRAGService) Retrieve(_ context.Context, owner domain.OwnerID, req driving.RetrieveRequest) ([]domain.RetrievedChunk, error) {
	m.lastOwner, m.lastReq = owner, req
	return m.chunks, m.err
}

func (m *mockRAGService) Answer(_ context.Context, owner domain.OwnerID, req driving.AnswerRequest) (*domain.Answer, error) {
	m.lastOwner, m.lastAsk = owner, req
	return m.answer, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  *driving.IngestResult
	err     error
	lastReq driving.IngestRequest
}

func (m *mockIngestService) Ingest(_ context.Context, _ domain.OwnerID, req driving.IngestRequest) (*driving.IngestResult, error) {
	m.lastReq = req
	return m.result, m.err
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	documents []domain.DocumentSummary
	document  *domain.Document
	chunks    []domain.TextChunk
	err       error
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

func (m *mockLibraryService) DeleteDocument(_ context.Context, _ domain.OwnerID, _ string) error {
	return m.err
}

// mockStudyService is a mock implementation of driving.StudyService.
// Only the generation and note lookups carry data.
type mockStudyService struct {
	quiz      *domain.Quiz
	note      *domain.Note
	err       error
	lastQuiz  driving.QuizRequest
	lastNotes driving.NoteRequest
}

func (m *mockStudyService) GenerateQuiz(_ context.Context, _ domain.OwnerID, req driving.QuizRequest) (*domain.Quiz, error) {
	m.lastQuiz = req
	return m.quiz, m.err
}

func (m *mockStudyService) GetQuiz(_ context.Context, _ domain.OwnerID, _ string) (*domain.Quiz, error) {
	return m.quiz, m.err
}

func (m *mockStudyService) ListQuizzes(_ context.Context, _ domain.OwnerID) ([]domain.Quiz, error) {
	return nil, m.err
}

func (m *mockStudyService) SubmitQuiz(_ context.Context, _ domain.OwnerID, _ string, _ map[string]int, _ time.Duration) (*domain.QuizAttempt, error) {
	return nil, m.err
}

func (m *mockStudyService) ListQuizAttempts(_ context.Context, _ domain.OwnerID, _ string) ([]domain.QuizAttempt, error) {
	return nil, m.err
}

func (m *mockStudyService) PreviewFlashcards(_ context.Context, _ domain.OwnerID, _ driving.FlashcardRequest) ([]domain.Flashcard, error) {
	return nil, m.err
}

func (m *mockStudyService) GenerateFlashcards(_ context.Context, _ domain.OwnerID, _ driving.FlashcardRequest) (*domain.FlashcardSet, error) {
	return nil, m.err
}

func (m *mockStudyService) SaveFlashcardSet(_ context.Context, _ domain.OwnerID, _ driving.NewFlashcardSet) (*domain.FlashcardSet, error) {
	return nil, m.err
}

func (m *mockStudyService) GetFlashcardSet(_ context.Context, _ domain.OwnerID, _ string) (*domain.FlashcardSet, error) {
	return nil, m.err
}

func (m *mockStudyService) ListFlashcardSets(_ context.Context, _ domain.OwnerID) ([]domain.FlashcardSet, error) {
	return nil, m.err
}

func (m *mockStudyService) UpdateFlashcardMastery(_ context.Context, _ domain.OwnerID, _ string, _ int) error {
	return m.err
}

func (m *mockStudyService) ReviewFlashcard(_ context.Context, _ domain.OwnerID, _ string, _ int) (*domain.FlashcardReview, error) {
	return nil, m.err
}

func (m *mockStudyService) GenerateNotes(_ context.Context, _ domain.OwnerID, req driving.NoteRequest) (*domain.Note, error) {
	m.lastNotes = req
	return m.note, m.err
}

func (m *mockStudyService) GetNote(_ context.Context, _ domain.OwnerID, _ string) (*domain.Note, error) {
	return m.note, m.err
}

func (m *mockStudyService) ListNotes(_ context.Context, _ domain.OwnerID, _ string) ([]domain.Note, error) {
	return nil, m.err
}

func (m *mockStudyService) UpdateNote(_ context.Context, _ domain.OwnerID, _, _ string) error {
	return m.err
}

func (m *mockStudyService) DeleteNote(_ context.Context, _ domain.OwnerID, _ string) error {
	return m.err
}
