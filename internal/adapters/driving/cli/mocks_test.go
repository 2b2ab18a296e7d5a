package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

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
}

func (m *mockNoteRenderer) RenderNoteHTML(_ context.Context, _ domain.OwnerID, _ string) (string, error) {
	return m.html, nil
}

type mockRAGService struct {
	chunks    []domain.RetrievedChunk
	answer    *domain.Answer
	err       error
	lastOwner domain.OwnerID
	lastReq   driving.RetrieveRequest
	asks      []driving.AnswerRequest
}

func (m *mockRAGService) Retrieve(_ context.Context, owner domain.OwnerID, req driving.RetrieveRequest) ([]domain.RetrievedChunk, error) {
	m.lastOwner, m.lastReq = owner, req
	return m.chunks, m.err
}

func (m *mockRAGService) Answer(_ context.Context, owner domain.OwnerID, req driving.AnswerRequest) (*domain.Answer, error) {
	m.lastOwner = owner
	m.asks = append(m.asks, req)
	return m.answer, m.err
}

type mockStudyService struct {
	quiz    *domain.Quiz
	attempt *domain.QuizAttempt
	cards   []domain.Flashcard
	set     *domain.FlashcardSet
	sets    []domain.FlashcardSet
	note    *domain.Note
	notes   []domain.Note
	err     error

	lastQuiz        driving.QuizRequest
	lastAnswers     map[string]int
	lastFlashcards  driving.FlashcardRequest
	lastSave        driving.NewFlashcardSet
	lastCard        string
	lastLevel       int
	lastRating      int
	lastNoteRequest driving.NoteRequest
	lastContent     string
}

func (m *mockStudyService) GenerateQuiz(_ context.Context, _ domain.OwnerID, req driving.QuizRequest) (*domain.Quiz, error) {
	m.lastQuiz = req
	return m.quiz, m.err
}

func (m *mockStudyService) GetQuiz(_ context.Context, _ domain.OwnerID, _ string) (*domain.Quiz, error) {
	return m.quiz, m.err
}

func (m *mockStudyService) ListQuizzes(_ context.Context, _ domain.OwnerID) ([]domain.Quiz, error) {
	if m.quiz == nil {
		return nil, m.err
	}
	return []domain.Quiz{*m.quiz}, m.err
}

func (m *mockStudyService) SubmitQuiz(_ context.Context, _ domain.OwnerID, _ string, answers map[string]int, _ time.Duration) (*domain.QuizAttempt, error) {
	m.lastAnswers = answers
	return m.attempt, m.err
}

func (m *mockStudyService) ListQuizAttempts(_ context.Context, _ domain.OwnerID, _ string) ([]domain.QuizAttempt, error) {
	if m.attempt == nil {
		return nil, m.err
	}
	return []domain.QuizAttempt{*m.attempt}, m.err
}

func (m *mockStudyService) PreviewFlashcards(_ context.Context, _ domain.OwnerID, req driving.FlashcardRequest) ([]domain.Flashcard, error) {
	m.lastFlashcards = req
	return m.cards, m.err
}

func (m *mockStudyService) GenerateFlashcards(_ context.Context, _ domain.OwnerID, req driving.FlashcardRequest) (*domain.FlashcardSet, error) {
	m.lastFlashcards = req
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

func (m *mockStudyService) UpdateFlashcardMastery(_ context.Context, _ domain.OwnerID, id string, level int) error {
	m.lastCard, m.lastLevel = id, level
	return m.err
}

func (m *mockStudyService) ReviewFlashcard(_ context.Context, _ domain.OwnerID, id string,
	rating int) (*domain.FlashcardReview, error) {
	m.lastCard, m.lastRating = id, rating
	if m.err != nil {
		return nil, m.err
	}
	return &domain.FlashcardReview{ID: "r1", CardID: id, Rating: rating, LevelBefore: 2,
		LevelAfter: domain.NextMastery(2, rating)}, nil
}

func (m *mockStudyService) GenerateNotes(_ context.Context, _ domain.OwnerID, req driving.NoteRequest) (*domain.Note, error) {
	m.lastNoteRequest = req
	return m.note, m.err
}

func (m *mockStudyService) GetNote(_ context.Context, _ domain.OwnerID, _ string) (*domain.Note, error) {
	return m.note, m.err
}

func (m *mockStudyService) ListNotes(_ context.Context, _ domain.OwnerID, _ string) ([]domain.Note, error) {
	return m.notes, m.err
}

func (m *mockStudyService) UpdateNote(_ context.Context, _ domain.OwnerID, _, content string) error {
	m.lastContent = content
	return m.err
}

func (m *mockStudyService) DeleteNote(_ context.Context, _ domain.OwnerID, _ string) error {
	return m.err
}

type mockSettingsService struct {
	settings *domain.AppSettings
	err      error

	validateErr  error
	ragErr       error
	lastUser     domain.OwnerID
	lastProvider domain.AIProvider
	lastModel    string
	lastAPIKey   string
	lastRAG      *domain.RAGSettings
}

func newMockSettingsService() *mockSettingsService {
	defaults := domain.DefaultAppSettings()
	defaults.User = "alice"
	return &mockSettingsService{settings: &defaults}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) SetUser(owner domain.OwnerID) error {
	m.lastUser = owner
	return m.err
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, key string) error {
	m.lastProvider, m.lastModel, m.lastAPIKey = p, model, key
	return m.err
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, key string) error {
	m.lastProvider, m.lastModel, m.lastAPIKey = p, model, key
	return m.err
}

func (m *mockSettingsService) SetRAG(rag domain.RAGSettings) error {
	m.lastRAG = &rag
	if m.ragErr != nil {
		return m.ragErr
	}
	return m.err
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.validateErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.validateErr }

type testServices struct {
	ingest   *mockIngestService
	library  *mockLibraryService
	notes    *mockNoteRenderer
	rag      *mockRAGService
	study    *mockStudyService
	settings *mockSettingsService
}

// setupTestServices wires fresh mocks into the command tree for one test.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		ingest:   &mockIngestService{},
		library:  &mockLibraryService{},
		notes:    &mockNoteRenderer{},
		rag:      &mockRAGService{},
		study:    &mockStudyService{},
		settings: newMockSettingsService(),
	}
	SetServices(&Services{
		Ingest:   ts.ingest,
		Library:  ts.library,
		Notes:    ts.notes,
		RAG:      ts.rag,
		Study:    ts.study,
		Settings: ts.settings,
	})

	origTerminal := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		SetServices(&Services{})
		stdinIsTerminal = origTerminal
	})
	return ts
}

// resetFlags restores every flag to its default. Cobra keeps parsed values
// between Execute calls on the same tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
