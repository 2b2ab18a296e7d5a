package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

const (
	alice domain.OwnerID = "alice"
	bob   domain.OwnerID = "bob"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func seedDocument(t *testing.T, s *Store, owner domain.OwnerID, id string, created time.Time) {
	t.Helper()
	require.NoError(t, s.SaveDocument(context.Background(), &domain.Document{
		ID: id, OwnerID: owner, Label: "Doc " + id, Kind: domain.SourceKindText, CreatedAt: created,
	}))
}

func textChunks(n int) []domain.TextChunk {
	out := make([]domain.TextChunk, n)
	for i := range out {
		out[i] = domain.TextChunk{Index: i, StartOffset: i * 10, EndOffset: i*10 + 10, Text: fmt.Sprintf("chunk %d", i)}
	}
	return out
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsDataAndSkipsMigrations(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 9, 30, 0, 123, time.UTC)

	store, err := NewStore(dir)
	require.NoError(t, err)
	seedDocument(t, store, alice, "d1", created)
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.GetDocument(ctx, alice, "d1")
	require.NoError(t, err)
	assert.Equal(t, created, doc.CreatedAt)
	assert.Equal(t, "Doc d1", doc.Label)
	assert.Equal(t, domain.SourceKindText, doc.Kind)

	var versions int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 2, versions)
}

func TestStore_ForeignKeysEnabledOnEveryConnection(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		conn, err := s.db.Conn(ctx)
		require.NoError(t, err)
		var on int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on))
		assert.Equal(t, 1, on)
		defer conn.Close()
	}
}

// ==================== Document Tests ====================

func TestStore_SaveDocument_Validation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.SaveDocument(ctx, &domain.Document{OwnerID: alice}), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.SaveDocument(ctx, &domain.Document{ID: "d"}), domain.ErrMissingOwner)

	seedDocument(t, s, alice, "d", time.Now())
	assert.ErrorIs(t, s.SaveDocument(ctx, &domain.Document{ID: "d", OwnerID: bob, Label: "x"}), domain.ErrInvalidInput)

	doc, err := s.GetDocument(ctx, alice, "d")
	require.NoError(t, err)
	assert.Equal(t, "Doc d", doc.Label)
}

func TestStore_GetDocument_OwnerScoped(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seedDocument(t, s, alice, "d1", time.Now())

	_, err := s.GetDocument(ctx, bob, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.GetDocument(ctx, "", "d1")
	assert.ErrorIs(t, err, domain.ErrMissingOwner)
}

func TestStore_ListDocuments_CountsAndOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedDocument(t, s, alice, "old", base)
	seedDocument(t, s, alice, "new", base.Add(time.Hour))
	seedDocument(t, s, bob, "other", base)
	_, err := s.StoreChunks(ctx, alice, "old", "m", textChunks(3), [][]float32{{1}, {1}, {1}})
	require.NoError(t, err)
	require.NoError(t, s.SaveQuiz(ctx, &domain.Quiz{ID: "q1", OwnerID: alice, DocumentID: "old", CreatedAt: base}))
	require.NoError(t, s.SaveFlashcardSet(ctx, &domain.FlashcardSet{ID: "f1", OwnerID: alice, DocumentID: "old", CreatedAt: base}))
	require.NoError(t, s.SaveNote(ctx, &domain.Note{ID: "n1", OwnerID: alice, DocumentID: "old", CreatedAt: base}))
	require.NoError(t, s.SaveNote(ctx, &domain.Note{ID: "n2", OwnerID: alice, DocumentID: "old", CreatedAt: base}))

	docs, err := s.ListDocuments(ctx, alice)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "old", docs[1].ID)
	assert.Equal(t, 3, docs[1].ChunkCount)
	assert.Equal(t, 1, docs[1].QuizCount)
	assert.Equal(t, 1, docs[1].FlashcardCount)
	assert.Equal(t, 2, docs[1].NoteCount)

	empty, err := s.ListDocuments(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStore_DeleteDocument_Cascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()
	seedDocument(t, s, alice, "d1", now)
	_, err := s.StoreChunks(ctx, alice, "d1", "m", textChunks(2), [][]float32{{1}, {1}})
	require.NoError(t, err)
	require.NoError(t, s.SaveQuiz(ctx, &domain.Quiz{ID: "q1", OwnerID: alice, DocumentID: "d1", CreatedAt: now,
		Questions: []domain.QuizQuestion{{Text: "?", Options: []string{"a", "b", "c", "d"}}}}))
	require.NoError(t, s.SaveQuizAttempt(ctx, &domain.QuizAttempt{ID: "a1", OwnerID: alice, QuizID: "q1", CompletedAt: now}))
	set := &domain.FlashcardSet{ID: "f1", OwnerID: alice, DocumentID: "d1", CreatedAt: now,
		Cards: []domain.Flashcard{{Front: "f", Back: "b"}}}
	require.NoError(t, s.SaveFlashcardSet(ctx, set))
	require.NoError(t, s.ReviewFlashcard(ctx, &domain.FlashcardReview{OwnerID: alice, CardID: set.Cards[0].ID, Rating: 4}))
	require.NoError(t, s.SaveNote(ctx, &domain.Note{ID: "n1", OwnerID: alice, DocumentID: "d1", CreatedAt: now}))
	require.NoError(t, s.SaveNote(ctx, &domain.Note{ID: "n2", OwnerID: alice, CreatedAt: now}))

	assert.ErrorIs(t, s.DeleteDocument(ctx, bob, "d1"), domain.ErrNotFound)
	require.NoError(t, s.DeleteDocument(ctx, alice, "d1"))
	assert.ErrorIs(t, s.DeleteDocument(ctx, alice, "d1"), domain.ErrNotFound)

	for _, table := range []string{"chunks", "quizzes", "quiz_questions", "quiz_attempts", "flashcard_sets", "flashcards", "flashcard_reviews"} {
		var n int
		require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}

	_, err = s.GetNote(ctx, alice, "n1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetNote(ctx, alice, "n2")
	assert.NoError(t, err, "notes without a document survive")
}

// ==================== Chunk Tests ====================

func TestStore_StoreChunks_Mismatch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seedDocument(t, s, alice, "d1", time.Now())

	_, err := s.StoreChunks(ctx, alice, "d1", "m", textChunks(2), [][]float32{{1, 0}})
	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)

	_, err = s.StoreChunks(ctx, alice, "d1", "m", textChunks(2), [][]float32{{1, 0}, {1}})
	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)

	chunks, err := s.ListDocumentChunks(ctx, alice, "d1", 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestStore_StoreChunks_OtherOwnersDocument(t *testing.T) {
	s := setupTestStore(t)
	seedDocument(t, s, alice, "d1", time.Now())

	_, err := s.StoreChunks(context.Background(), bob, "d1", "m", textChunks(1), [][]float32{{1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_StoreChunks_ReplacesPrevious(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seedDocument(t, s, alice, "d1", time.Now())

	_, err := s.StoreChunks(ctx, alice, "d1", "m", textChunks(4), [][]float32{{1}, {1}, {1}, {1}})
	require.NoError(t, err)
	n, err := s.StoreChunks(ctx, alice, "d1", "m", textChunks(2), [][]float32{{1}, {1}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	chunks, err := s.ListDocumentChunks(ctx, alice, "d1", 0)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestStore_Retrieve_OrdersAndLimits(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seedDocument(t, s, alice, "d1", time.Now())

	_, err := s.StoreChunks(ctx, alice, "d1", "m", textChunks(3), [][]float32{
		{0, 1},
		{1, 0},
		{1, 1},
	})
	require.NoError(t, err)

	got, err := s.Retrieve(ctx, domain.RetrievalQuery{Embedding: []float32{1, 0}, Model: "m", OwnerID: alice, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.InDelta(t, 0, got[0].Distance, 1e-6)
	assert.Equal(t, 2, got[1].Index)
	assert.Equal(t, "chunk 2", got[1].Text)
	assert.Equal(t, 20, got[1].StartOffset)
}

func TestStore_Retrieve_TiesBreakByIndex(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seedDocument(t, s, alice, "d1", time.Now())
	chunks := textChunks(4)
	chunks[0], chunks[3] = chunks[3], chunks[0]
	_, err := s.StoreChunks(ctx, alice, "d1", "m", chunks, [][]float32{{1, 0}, {1, 0}, {1, 0}, {1, 0}})
	require.NoError(t, err)

	got, err := s.Retrieve(ctx, domain.RetrievalQuery{Embedding: []float32{1, 0}, Model: "m", OwnerID: alice})
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, c := range got {
		assert.Equal(t, i, c.Index)
	}
}

func TestStore_Retrieve_Isolation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seedDocument(t, s, alice, "a1", time.Now())
	seedDocument(t, s, alice, "a2", time.Now())
	seedDocument(t, s, bob, "b1", time.Now())
	_, err := s.StoreChunks(ctx, alice, "a1", "small", textChunks(1), [][]float32{{1, 0}})
	require.NoError(t, err)
	_, err = s.StoreChunks(ctx, alice, "a2", "large", textChunks(1), [][]float32{{1, 0, 0}})
	require.NoError(t, err)
	_, err = s.StoreChunks(ctx, bob, "b1", "small", textChunks(1), [][]float32{{1, 0}})
	require.NoError(t, err)

	tests := []struct {
		name  string
		query domain.RetrievalQuery
		want  []string
	}{
		{"owner and model", domain.RetrievalQuery{Embedding: []float32{1, 0}, Model: "small", OwnerID: alice}, []string{"a1"}},
		{"dimension without model", domain.RetrievalQuery{Embedding: []float32{1, 0, 0}, OwnerID: alice}, []string{"a2"}},
		{"other model", domain.RetrievalQuery{Embedding: []float32{1, 0}, Model: "large", OwnerID: alice}, nil},
		{"foreign document filter", domain.RetrievalQuery{Embedding: []float32{1, 0}, Model: "small", OwnerID: alice, DocumentID: "b1"}, nil},
		{"bob", domain.RetrievalQuery{Embedding: []float32{1, 0}, Model: "small", OwnerID: bob}, []string{"b1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Retrieve(ctx, tt.query)
			require.NoError(t, err)
			var docs []string
			for _, c := range got {
				docs = append(docs, c.DocumentID)
			}
			assert.Equal(t, tt.want, docs)
		})
	}
}

func TestStore_Retrieve_Validation(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Retrieve(context.Background(), domain.RetrievalQuery{Embedding: []float32{1}})
	assert.ErrorIs(t, err, domain.ErrMissingOwner)

	_, err = s.Retrieve(context.Background(), domain.RetrievalQuery{OwnerID: alice})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := s.Retrieve(context.Background(), domain.RetrievalQuery{Embedding: []float32{1}, OwnerID: alice})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_ListDocumentChunks_Limit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seedDocument(t, s, alice, "d1", time.Now())
	chunks := textChunks(5)
	chunks[0], chunks[4] = chunks[4], chunks[0]
	_, err := s.StoreChunks(ctx, alice, "d1", "m", chunks, [][]float32{{1}, {1}, {1}, {1}, {1}})
	require.NoError(t, err)

	got, err := s.ListDocumentChunks(ctx, alice, "d1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, i, c.Index)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "d1", c.DocumentID)
	}

	_, err = s.ListDocumentChunks(ctx, bob, "d1", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
}

// ==================== Artifact Tests ====================

func TestStore_Quiz_RoundTripAndAttempts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedDocument(t, s, alice, "d1", base)

	quiz := &domain.Quiz{ID: "q1", OwnerID: alice, DocumentID: "d1", Title: "Quiz", Difficulty: domain.DifficultyHard,
		CreatedAt: base, Questions: []domain.QuizQuestion{
			{Text: "one", Options: []string{"a", "b", "c", "d"}, CorrectOption: 1, Explanation: "because"},
			{Text: "two", Options: []string{"e", "f", "g", "h"}, CorrectOption: 3},
		}}
	require.NoError(t, s.SaveQuiz(ctx, quiz))
	assert.NotEmpty(t, quiz.Questions[0].ID)

	got, err := s.GetQuiz(ctx, alice, "q1")
	require.NoError(t, err)
	assert.Equal(t, quiz.Title, got.Title)
	assert.Equal(t, domain.DifficultyHard, got.Difficulty)
	assert.Equal(t, base, got.CreatedAt)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, quiz.Questions, got.Questions)

	_, err = s.GetQuiz(ctx, bob, "q1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	selected := 1
	require.NoError(t, s.SaveQuizAttempt(ctx, &domain.QuizAttempt{
		ID: "a1", OwnerID: alice, QuizID: "q1", Score: 50, TotalCorrect: 1, TotalQuestions: 2,
		Duration: 90 * time.Second, CompletedAt: base,
		Answers: []domain.AttemptAnswer{{QuestionID: quiz.Questions[0].ID, SelectedOption: &selected, IsCorrect: true}},
	}))
	require.NoError(t, s.SaveQuizAttempt(ctx, &domain.QuizAttempt{ID: "a2", OwnerID: alice, QuizID: "q1", CompletedAt: base.Add(time.Minute)}))
	assert.ErrorIs(t, s.SaveQuizAttempt(ctx, &domain.QuizAttempt{ID: "a3", OwnerID: bob, QuizID: "q1"}), domain.ErrNotFound)

	attempts, err := s.ListQuizAttempts(ctx, alice, "q1")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "a2", attempts[0].ID)
	assert.Equal(t, 90*time.Second, attempts[1].Duration)
	require.Len(t, attempts[1].Answers, 1)
	assert.Equal(t, 1, *attempts[1].Answers[0].SelectedOption)

	_, err = s.ListQuizAttempts(ctx, bob, "q1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.ListQuizzes(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Questions)
	assert.Equal(t, "d1", list[0].DocumentID)
}

func TestStore_SaveQuiz_ForeignDocument(t *testing.T) {
	s := setupTestStore(t)
	seedDocument(t, s, bob, "d1", time.Now())

	err := s.SaveQuiz(context.Background(), &domain.Quiz{ID: "q1", OwnerID: alice, DocumentID: "d1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.ListQuizzes(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_ReviewFlashcard(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	set := &domain.FlashcardSet{ID: "f1", OwnerID: alice, Title: "Set", CreatedAt: time.Now(), Cards: []domain.Flashcard{
		{Front: "f", Back: "b", MasteryLevel: 1},
	}}
	require.NoError(t, s.SaveFlashcardSet(ctx, set))
	cardID := set.Cards[0].ID

	down := &domain.FlashcardReview{OwnerID: alice, CardID: cardID, Rating: 2}
	require.NoError(t, s.ReviewFlashcard(ctx, down))
	assert.Equal(t, 1, down.LevelBefore)
	assert.Equal(t, 0, down.LevelAfter)

	floored := &domain.FlashcardReview{OwnerID: alice, CardID: cardID, Rating: 1}
	require.NoError(t, s.ReviewFlashcard(ctx, floored))
	assert.Equal(t, 0, floored.LevelAfter)

	same := &domain.FlashcardReview{OwnerID: alice, CardID: cardID, Rating: 3}
	require.NoError(t, s.ReviewFlashcard(ctx, same))
	assert.Equal(t, 0, same.LevelAfter)

	up := &domain.FlashcardReview{OwnerID: alice, CardID: cardID, Rating: 4}
	require.NoError(t, s.ReviewFlashcard(ctx, up))
	assert.Equal(t, 1, up.LevelAfter)
	assert.NotEmpty(t, up.ID)
	assert.Equal(t, fixed, up.ReviewedAt)

	assert.ErrorIs(t, s.ReviewFlashcard(ctx, &domain.FlashcardReview{OwnerID: bob, CardID: cardID, Rating: 5}), domain.ErrNotFound)
	assert.ErrorIs(t, s.ReviewFlashcard(ctx, &domain.FlashcardReview{OwnerID: alice, CardID: "missing", Rating: 5}), domain.ErrNotFound)
	assert.ErrorIs(t, s.ReviewFlashcard(ctx, &domain.FlashcardReview{OwnerID: alice, CardID: cardID, Rating: 6}), domain.ErrInvalidInput)

	got, err := s.GetFlashcardSet(ctx, alice, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cards[0].MasteryLevel)

	var n, lastRating int
	var reviewedAt int64
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM flashcard_reviews WHERE flashcard_id = ?", cardID).Scan(&n))
	assert.Equal(t, 4, n)
	require.NoError(t, s.db.QueryRow("SELECT rating, reviewed_at FROM flashcard_reviews WHERE id = ?", up.ID).
		Scan(&lastRating, &reviewedAt))
	assert.Equal(t, 4, lastRating)
	assert.Equal(t, fixed, fromUnix(reviewedAt))
}

func TestStore_Flashcards_Mastery(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	set := &domain.FlashcardSet{ID: "f1", OwnerID: alice, Title: "Set", CreatedAt: time.Now(), Cards: []domain.Flashcard{
		{Front: "f", Back: "b", AIGenerated: true}, {Front: "f2", Back: "b2", MasteryLevel: 9},
	}}
	require.NoError(t, s.SaveFlashcardSet(ctx, set))
	cardID := set.Cards[0].ID

	require.NoError(t, s.UpdateFlashcardMastery(ctx, alice, cardID, 7))
	assert.ErrorIs(t, s.UpdateFlashcardMastery(ctx, bob, cardID, 1), domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdateFlashcardMastery(ctx, alice, "missing", 1), domain.ErrNotFound)

	got, err := s.GetFlashcardSet(ctx, alice, "f1")
	require.NoError(t, err)
	require.Len(t, got.Cards, 2)
	assert.True(t, got.Cards[0].AIGenerated)
	assert.Equal(t, domain.MaxMastery, got.Cards[0].MasteryLevel)
	assert.Equal(t, domain.MaxMastery, got.Cards[1].MasteryLevel)
	assert.Equal(t, 2, got.MasteredCount())
	assert.Empty(t, got.DocumentID)

	_, err = s.GetFlashcardSet(ctx, bob, "f1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.ListFlashcardSets(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Cards)
}

func TestStore_Notes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixed := base.Add(time.Hour)
	s.now = func() time.Time { return fixed }
	seedDocument(t, s, alice, "d1", base)

	require.NoError(t, s.SaveNote(ctx, &domain.Note{ID: "n1", OwnerID: alice, DocumentID: "d1", Content: "# A",
		Style: domain.NoteStyleOutline, CreatedAt: base}))
	require.NoError(t, s.SaveNote(ctx, &domain.Note{ID: "n2", OwnerID: alice, Content: "# B", CreatedAt: base.Add(time.Minute)}))

	all, err := s.ListNotes(ctx, alice, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "n2", all[0].ID)

	forDoc, err := s.ListNotes(ctx, alice, "d1")
	require.NoError(t, err)
	require.Len(t, forDoc, 1)
	assert.Equal(t, "n1", forDoc[0].ID)
	assert.Equal(t, base, forDoc[0].UpdatedAt)

	require.NoError(t, s.UpdateNoteContent(ctx, alice, "n1", "# A2"))
	n, err := s.GetNote(ctx, alice, "n1")
	require.NoError(t, err)
	assert.Equal(t, "# A2", n.Content)
	assert.Equal(t, domain.NoteStyleOutline, n.Style)
	assert.Equal(t, fixed, n.UpdatedAt)

	assert.ErrorIs(t, s.UpdateNoteContent(ctx, bob, "n1", "x"), domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteNote(ctx, bob, "n1"), domain.ErrNotFound)
	require.NoError(t, s.DeleteNote(ctx, alice, "n1"))
	_, err = s.GetNote(ctx, alice, "n1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ConcurrentRetrieveAndDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("d%d", i)
		seedDocument(t, s, alice, id, time.Now())
		_, err := s.StoreChunks(ctx, alice, id, "m", textChunks(3), [][]float32{{1, 0}, {0, 1}, {1, 1}})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, s.DeleteDocument(ctx, alice, fmt.Sprintf("d%d", n)))
		}(i)
		go func() {
			defer wg.Done()
			got, err := s.Retrieve(ctx, domain.RetrievalQuery{Embedding: []float32{1, 0}, Model: "m", OwnerID: alice})
			assert.NoError(t, err)
			assert.LessOrEqual(t, len(got), domain.DefaultRetrievalLimit)
		}()
	}
	wg.Wait()

	docs, err := s.ListDocuments(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
