package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
	"github.com/quizbolt/quizbolt/internal/logger"
	"github.com/quizbolt/quizbolt/internal/prompts"
)

// Ensure StudyService implements the interface.
var _ driving.StudyService = (*StudyService)(nil)

// Generation limits per study artifact.
const (
	quizChunkLimit      = 20
	flashcardChunkLimit = 20
	notesChunkLimit     = 30

	studyTemperature   = 0.7
	quizMaxTokens      = 2000
	flashcardMaxTokens = 2000
	notesMaxTokens     = 3000

	defaultNumQuestions = 5
	defaultNumCards     = 10
	maxGeneratedItems   = 50
)

// promptData carries every field a study prompt may reference.
type promptData struct {
	Context         string
	Count           int
	Difficulty      string
	DifficultyUpper string
	Instruction     string
	Style           string
}

// StudyService generates quizzes, flashcards and notes from documents.
type StudyService struct {
	docs      driven.DocumentStore
	chunks    driven.ChunkStore
	artifacts driven.ArtifactStore
	llm       driven.LLMService
	prompts   driven.PromptStore
	metrics   driven.Metrics
	model     string
	now       func() time.Time
}

// NewStudyService creates a new study service.
// model selects the generation model; empty uses the LLM's default.
// prompts and metrics are optional (can be nil).
func NewStudyService(
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	artifacts driven.ArtifactStore,
	llm driven.LLMService,
	promptStore driven.PromptStore,
	metrics driven.Metrics,
	model string,
) *StudyService {
	return &StudyService{
		docs:      docs,
		chunks:    chunks,
		artifacts: artifacts,
		llm:       llm,
		prompts:   promptStore,
		metrics:   metrics,
		model:     model,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// material loads a document and the text of its first limit chunks.
func (s *StudyService) material(ctx context.Context, owner domain.OwnerID, documentID string,
	limit int) (*domain.Document, string, error) {
	if err := owner.Validate(); err != nil {
		return nil, "", err
	}
	if documentID == "" {
		return nil, "", fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	doc, err := s.docs.GetDocument(ctx, owner, documentID)
	if err != nil {
		return nil, "", err
	}
	chunks, err := s.chunks.ListDocumentChunks(ctx, owner, documentID, limit)
	if err != nil {
		return nil, "", fmt.Errorf("load chunks: %w", err)
	}
	text := joinChunkTexts(chunks)
	if strings.TrimSpace(text) == "" {
		return nil, "", domain.ErrNoContent
	}
	return doc, text, nil
}

// generate renders the system and user prompts and returns the raw reply.
func (s *StudyService) generate(ctx context.Context, gen *generation, systemName, userName string,
	data promptData, maxTokens int) (string, error) {
	system, err := prompts.Load(s.prompts, systemName, data)
	if err != nil {
		return "", gen.fail(err)
	}
	user, err := prompts.Load(s.prompts, userName, data)
	if err != nil {
		return "", gen.fail(err)
	}
	msgs := []driven.ChatMessage{
		{Role: string(domain.ChatRoleSystem), Content: system},
		{Role: string(domain.ChatRoleUser), Content: user},
	}
	return gen.call(ctx, s.llm, msgs, driven.ChatOptions{
		Model:       s.model,
		MaxTokens:   maxTokens,
		Temperature: studyTemperature,
		JSON:        systemName != driven.PromptNotesSystem,
	})
}

// --- Quizzes ---

// GenerateQuiz creates and stores a multiple-choice quiz for a document.
func (s *StudyService) GenerateQuiz(ctx context.Context, owner domain.OwnerID, req driving.QuizRequest) (*domain.Quiz, error) {
	count, err := itemCount(req.NumQuestions, defaultNumQuestions)
	if err != nil {
		return nil, err
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}
	if !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: difficulty %q", domain.ErrInvalidInput, difficulty)
	}

	doc, text, err := s.material(ctx, owner, req.DocumentID, quizChunkLimit)
	if err != nil {
		return nil, err
	}

	logger.Section("Quiz generation")
	gen := startGeneration(taskQuiz, s.metrics)
	reply, err := s.generate(ctx, gen, driven.PromptQuizSystem, driven.PromptQuizUser, promptData{
		Context:         text,
		Count:           count,
		Difficulty:      difficulty.String(),
		DifficultyUpper: strings.ToUpper(difficulty.String()),
		Instruction:     difficulty.Instruction(),
	}, quizMaxTokens)
	if err != nil {
		return nil, err
	}
	questions, err := DecodeQuiz(reply)
	if err != nil {
		return nil, gen.fail(err)
	}
	gen.done()

	quiz := &domain.Quiz{
		ID:         uuid.New().String(),
		OwnerID:    owner,
		DocumentID: doc.ID,
		Title:      titleOr(req.Title, "Quiz: "+doc.Label),
		Difficulty: difficulty,
		Questions:  questions,
		CreatedAt:  s.now(),
	}
	if err := s.artifacts.SaveQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	logger.Info("Generated quiz %q with %d questions", quiz.Title, len(quiz.Questions))
	return quiz, nil
}

// GetQuiz retrieves a quiz with its questions.
func (s *StudyService) GetQuiz(ctx context.Context, owner domain.OwnerID, id string) (*domain.Quiz, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.artifacts.GetQuiz(ctx, owner, id)
}

// ListQuizzes returns the owner's quizzes.
func (s *StudyService) ListQuizzes(ctx context.Context, owner domain.OwnerID) ([]domain.Quiz, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.artifacts.ListQuizzes(ctx, owner)
}

// SubmitQuiz grades answers and records the attempt.
// Questions missing from answers count as incorrect.
func (s *StudyService) SubmitQuiz(ctx context.Context, owner domain.OwnerID, quizID string,
	answers map[string]int, duration time.Duration) (*domain.QuizAttempt, error) {
	quiz, err := s.GetQuiz(ctx, owner, quizID)
	if err != nil {
		return nil, err
	}

	attempt := GradeQuiz(quiz, answers)
	attempt.ID = uuid.New().String()
	attempt.OwnerID = owner
	attempt.Duration = duration
	attempt.CompletedAt = s.now()

	if err := s.artifacts.SaveQuizAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	return attempt, nil
}

// GradeQuiz scores answers (question ID to option index) against a quiz.
func GradeQuiz(quiz *domain.Quiz, answers map[string]int) *domain.QuizAttempt {
	attempt := &domain.QuizAttempt{
		QuizID:         quiz.ID,
		TotalQuestions: len(quiz.Questions),
		Answers:        make([]domain.AttemptAnswer, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		a := domain.AttemptAnswer{
			QuestionID:    q.ID,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
		}
		if q.CorrectOption >= 0 && q.CorrectOption < len(q.Options) {
			a.CorrectAnswer = q.Options[q.CorrectOption]
		}
		if selected, ok := answers[q.ID]; ok {
			a.SelectedOption = &selected
			if selected >= 0 && selected < len(q.Options) {
				a.UserAnswer = q.Options[selected]
			}
			a.IsCorrect = selected == q.CorrectOption
		}
		if a.IsCorrect {
			attempt.TotalCorrect++
		}
		attempt.Answers = append(attempt.Answers, a)
	}
	attempt.Score = domain.ScorePercent(attempt.TotalCorrect, attempt.TotalQuestions)
	return attempt
}

// ListQuizAttempts returns the recorded attempts for a quiz.
func (s *StudyService) ListQuizAttempts(ctx context.Context, owner domain.OwnerID, quizID string) ([]domain.QuizAttempt, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.artifacts.ListQuizAttempts(ctx, owner, quizID)
}

// --- Flashcards ---

// PreviewFlashcards generates cards without storing them.
func (s *StudyService) PreviewFlashcards(ctx context.Context, owner domain.OwnerID,
	req driving.FlashcardRequest) ([]domain.Flashcard, error) {
	_, cards, err := s.flashcards(ctx, owner, req)
	return cards, err
}

func (s *StudyService) flashcards(ctx context.Context, owner domain.OwnerID,
	req driving.FlashcardRequest) (*domain.Document, []domain.Flashcard, error) {
	count, err := itemCount(req.NumCards, defaultNumCards)
	if err != nil {
		return nil, nil, err
	}
	doc, text, err := s.material(ctx, owner, req.DocumentID, flashcardChunkLimit)
	if err != nil {
		return nil, nil, err
	}

	logger.Section("Flashcard generation")
	gen := startGeneration(taskFlashcards, s.metrics)
	reply, err := s.generate(ctx, gen, driven.PromptFlashcardsSystem, driven.PromptFlashcardsUser,
		promptData{Context: text, Count: count}, flashcardMaxTokens)
	if err != nil {
		return nil, nil, err
	}
	cards, err := DecodeFlashcards(reply)
	if err != nil {
		return nil, nil, gen.fail(err)
	}
	gen.done()
	return doc, cards, nil
}

// GenerateFlashcards generates and stores a flashcard set.
func (s *StudyService) GenerateFlashcards(ctx context.Context, owner domain.OwnerID,
	req driving.FlashcardRequest) (*domain.FlashcardSet, error) {
	doc, cards, err := s.flashcards(ctx, owner, req)
	if err != nil {
		return nil, err
	}
	set := &domain.FlashcardSet{
		ID:         uuid.New().String(),
		OwnerID:    owner,
		DocumentID: doc.ID,
		Title:      titleOr(req.Title, "Flashcards: "+doc.Label),
		Cards:      cards,
		CreatedAt:  s.now(),
	}
	if err := s.artifacts.SaveFlashcardSet(ctx, set); err != nil {
		return nil, fmt.Errorf("save flashcards: %w", err)
	}
	logger.Info("Generated flashcard set %q with %d cards", set.Title, len(set.Cards))
	return set, nil
}

// SaveFlashcardSet stores user-provided or edited cards.
func (s *StudyService) SaveFlashcardSet(ctx context.Context, owner domain.OwnerID,
	req driving.NewFlashcardSet) (*domain.FlashcardSet, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(req.Cards) == 0 {
		return nil, fmt.Errorf("%w: at least one card is required", domain.ErrInvalidInput)
	}
	cards := make([]domain.Flashcard, 0, len(req.Cards))
	for i, c := range req.Cards {
		c.Front = strings.TrimSpace(c.Front)
		c.Back = strings.TrimSpace(c.Back)
		if c.Front == "" || c.Back == "" {
			return nil, fmt.Errorf("%w: card %d needs a front and a back", domain.ErrInvalidInput, i)
		}
		c.ID = ""
		c.OrderIndex = i
		c.MasteryLevel = domain.ClampMastery(c.MasteryLevel)
		cards = append(cards, c)
	}
	set := &domain.FlashcardSet{
		ID:         uuid.New().String(),
		OwnerID:    owner,
		DocumentID: req.DocumentID,
		Title:      title,
		Cards:      cards,
		CreatedAt:  s.now(),
	}
	if err := s.artifacts.SaveFlashcardSet(ctx, set); err != nil {
		return nil, fmt.Errorf("save flashcards: %w", err)
	}
	return set, nil
}

// GetFlashcardSet retrieves a set with its cards.
func (s *StudyService) GetFlashcardSet(ctx context.Context, owner domain.OwnerID, id string) (*domain.FlashcardSet, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.artifacts.GetFlashcardSet(ctx, owner, id)
}

// ListFlashcardSets returns the owner's sets.
func (s *StudyService) ListFlashcardSets(ctx context.Context, owner domain.OwnerID) ([]domain.FlashcardSet, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.artifacts.ListFlashcardSets(ctx, owner)
}

// UpdateFlashcardMastery sets a card's mastery, clamped to 0..5.
func (s *StudyService) UpdateFlashcardMastery(ctx context.Context, owner domain.OwnerID, cardID string, level int) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	return s.artifacts.UpdateFlashcardMastery(ctx, owner, cardID, domain.ClampMastery(level))
}

// ReviewFlashcard records a rating and returns the logged review with the
// card's new mastery level.
func (s *StudyService) ReviewFlashcard(ctx context.Context, owner domain.OwnerID, cardID string,
	rating int) (*domain.FlashcardReview, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cardID) == "" {
		return nil, fmt.Errorf("%w: card id is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidateRating(rating); err != nil {
		return nil, err
	}
	review := &domain.FlashcardReview{
		OwnerID:    owner,
		CardID:     cardID,
		Rating:     rating,
		ReviewedAt: s.now(),
	}
	if err := s.artifacts.ReviewFlashcard(ctx, review); err != nil {
		return nil, fmt.Errorf("review flashcard: %w", err)
	}
	logger.Debug("Card %s reviewed with rating %d: mastery %d -> %d",
		cardID, rating, review.LevelBefore, review.LevelAfter)
	return review, nil
}

// --- Notes ---

// GenerateNotes creates and stores Markdown notes for a document.
func (s *StudyService) GenerateNotes(ctx context.Context, owner domain.OwnerID, req driving.NoteRequest) (*domain.Note, error) {
	style := req.Style
	if style == "" {
		style = domain.NoteStyleSummary
	}
	if !style.IsValid() {
		return nil, fmt.Errorf("%w: note style %q", domain.ErrInvalidInput, style)
	}
	doc, text, err := s.material(ctx, owner, req.DocumentID, notesChunkLimit)
	if err != nil {
		return nil, err
	}

	logger.Section("Note generation")
	gen := startGeneration(taskNotes, s.metrics)
	reply, err := s.generate(ctx, gen, driven.PromptNotesSystem, driven.PromptNotesUser, promptData{
		Context:     text,
		Style:       style.String(),
		Instruction: style.Instruction(),
	}, notesMaxTokens)
	if err != nil {
		return nil, err
	}
	content, err := CleanNotes(reply)
	if err != nil {
		return nil, gen.fail(err)
	}
	gen.done()

	now := s.now()
	note := &domain.Note{
		ID:         uuid.New().String(),
		OwnerID:    owner,
		DocumentID: doc.ID,
		Title:      titleOr(req.Title, "Notes: "+doc.Label),
		Content:    content,
		Style:      style,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.artifacts.SaveNote(ctx, note); err != nil {
		return nil, fmt.Errorf("save note: %w", err)
	}
	logger.Info("Generated %s notes %q", style, note.Title)
	return note, nil
}

// GetNote retrieves a note.
func (s *StudyService) GetNote(ctx context.Context, owner domain.OwnerID, id string) (*domain.Note, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.artifacts.GetNote(ctx, owner, id)
}

// ListNotes returns the owner's notes, optionally for one document.
func (s *StudyService) ListNotes(ctx context.Context, owner domain.OwnerID, documentID string) ([]domain.Note, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.artifacts.ListNotes(ctx, owner, documentID)
}

// UpdateNote replaces a note's content.
func (s *StudyService) UpdateNote(ctx context.Context, owner domain.OwnerID, id, content string) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: note content is empty", domain.ErrInvalidInput)
	}
	return s.artifacts.UpdateNoteContent(ctx, owner, id, content)
}

// DeleteNote removes a note.
func (s *StudyService) DeleteNote(ctx context.Context, owner domain.OwnerID, id string) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	return s.artifacts.DeleteNote(ctx, owner, id)
}

// itemCount applies the default for zero and rejects out-of-range counts.
func itemCount(n, def int) (int, error) {
	if n == 0 {
		return def, nil
	}
	if n < 0 || n > maxGeneratedItems {
		return 0, fmt.Errorf("%w: count must be between 1 and %d, got %d", domain.ErrInvalidInput, maxGeneratedItems, n)
	}
	return n, nil
}

func titleOr(title, fallback string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return fallback
}
