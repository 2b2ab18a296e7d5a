package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.ChunkStore    = (*Store)(nil)
	_ driven.ArtifactStore = (*Store)(nil)
)

type storedChunk struct {
	chunk     domain.TextChunk
	model     string
	embedding []float32
}

// Store is an in-memory implementation of the document, chunk and artifact
// stores. One RWMutex guards everything so a document delete and its
// cascade are never observed half done.
type Store struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]storedChunk // by document ID
	quizzes   map[string]domain.Quiz
	attempts  map[string][]domain.QuizAttempt // by quiz ID
	sets      map[string]domain.FlashcardSet
	reviews   []domain.FlashcardReview
	notes     map[string]domain.Note
	now       func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]storedChunk),
		quizzes:   make(map[string]domain.Quiz),
		attempts:  make(map[string][]domain.QuizAttempt),
		sets:      make(map[string]domain.FlashcardSet),
		notes:     make(map[string]domain.Note),
		now:       time.Now,
	}
}

// --- documents ---

// SaveDocument stores or replaces a document.
func (s *Store) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := doc.OwnerID.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.documents[doc.ID]; ok && existing.OwnerID != doc.OwnerID {
		return domain.ErrInvalidInput
	}
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, owner domain.OwnerID, id string) (*domain.Document, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.ownedDocument(owner, id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns the owner's documents with artifact counts, newest first.
func (s *Store) ListDocuments(_ context.Context, owner domain.OwnerID) ([]domain.DocumentSummary, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DocumentSummary, 0)
	for _, doc := range s.documents {
		if doc.OwnerID != owner {
			continue
		}
		summary := domain.DocumentSummary{Document: doc, ChunkCount: len(s.chunks[doc.ID])}
		for _, q := range s.quizzes {
			if q.DocumentID == doc.ID {
				summary.QuizCount++
			}
		}
		for _, fs := range s.sets {
			if fs.DocumentID == doc.ID {
				summary.FlashcardCount++
			}
		}
		for _, n := range s.notes {
			if n.DocumentID == doc.ID {
				summary.NoteCount++
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteDocument removes a document with its chunks and artifacts.
func (s *Store) DeleteDocument(_ context.Context, owner domain.OwnerID, id string) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedDocument(owner, id); !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	for qid, q := range s.quizzes {
		if q.DocumentID == id {
			delete(s.quizzes, qid)
			delete(s.attempts, qid)
		}
	}
	for sid, fs := range s.sets {
		if fs.DocumentID == id {
			s.dropReviews(fs)
			delete(s.sets, sid)
		}
	}
	for nid, n := range s.notes {
		if n.DocumentID == id {
			delete(s.notes, nid)
		}
	}
	return nil
}

// ownedDocument must be called with the lock held.
func (s *Store) ownedDocument(owner domain.OwnerID, id string) (domain.Document, bool) {
	doc, ok := s.documents[id]
	if !ok || doc.OwnerID != owner {
		return domain.Document{}, false
	}
	return doc, true
}

// --- chunks ---

// StoreChunks replaces the document's chunks with the given chunks and embeddings.
func (s *Store) StoreChunks(_ context.Context, owner domain.OwnerID, documentID, model string,
	chunks []domain.TextChunk, embeddings [][]float32) (int, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}
	if _, err := domain.ValidateEmbeddings(chunks, embeddings); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedDocument(owner, documentID); !ok {
		return 0, domain.ErrNotFound
	}

	stored := make([]storedChunk, len(chunks))
	for i, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.DocumentID = documentID
		vec := make([]float32, len(embeddings[i]))
		copy(vec, embeddings[i])
		stored[i] = storedChunk{chunk: c, model: model, embedding: vec}
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].chunk.Index < stored[j].chunk.Index })
	s.chunks[documentID] = stored
	return len(stored), nil
}

// Retrieve scans the owner's chunks and returns the nearest by cosine distance.
// Only chunks embedded by the query's model with the same dimension are compared.
func (s *Store) Retrieve(_ context.Context, q domain.RetrievalQuery) ([]domain.RetrievedChunk, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RetrievedChunk, 0)
	for docID, stored := range s.chunks {
		if q.DocumentID != "" && docID != q.DocumentID {
			continue
		}
		if _, ok := s.ownedDocument(q.OwnerID, docID); !ok {
			continue
		}
		for _, sc := range stored {
			if q.Model != "" && sc.model != q.Model {
				continue
			}
			if len(sc.embedding) != len(q.Embedding) {
				continue
			}
			out = append(out, domain.RetrievedChunk{
				TextChunk: sc.chunk,
				Distance:  domain.CosineDistance(q.Embedding, sc.embedding),
			})
		}
	}
	domain.SortRetrieved(out)
	if limit := q.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListDocumentChunks returns up to limit chunks in index order. limit <= 0 means all.
func (s *Store) ListDocumentChunks(_ context.Context, owner domain.OwnerID, documentID string,
	limit int) ([]domain.TextChunk, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ownedDocument(owner, documentID); !ok {
		return nil, domain.ErrNotFound
	}
	stored := s.chunks[documentID]
	n := len(stored)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.TextChunk, n)
	for i := 0; i < n; i++ {
		out[i] = stored[i].chunk
	}
	return out, nil
}

// --- quizzes ---

// SaveQuiz inserts a quiz, assigning question IDs and order.
func (s *Store) SaveQuiz(_ context.Context, quiz *domain.Quiz) error {
	if quiz == nil || quiz.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := quiz.OwnerID.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDocumentRef(quiz.OwnerID, quiz.DocumentID); err != nil {
		return err
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = uuid.NewString()
		}
		quiz.Questions[i].OrderIndex = i
	}
	cp := *quiz
	cp.Questions = append([]domain.QuizQuestion(nil), quiz.Questions...)
	s.quizzes[quiz.ID] = cp
	return nil
}

// GetQuiz retrieves a quiz with its questions.
func (s *Store) GetQuiz(_ context.Context, owner domain.OwnerID, id string) (*domain.Quiz, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok || q.OwnerID != owner {
		return nil, domain.ErrNotFound
	}
	q.Questions = append([]domain.QuizQuestion(nil), q.Questions...)
	return &q, nil
}

// ListQuizzes returns the owner's quizzes without questions, newest first.
func (s *Store) ListQuizzes(_ context.Context, owner domain.OwnerID) ([]domain.Quiz, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, q := range s.quizzes {
		if q.OwnerID == owner {
			q.Questions = nil
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

// SaveQuizAttempt records an attempt against an owned quiz.
func (s *Store) SaveQuizAttempt(_ context.Context, attempt *domain.QuizAttempt) error {
	if attempt == nil || attempt.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := attempt.OwnerID.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[attempt.QuizID]
	if !ok || q.OwnerID != attempt.OwnerID {
		return domain.ErrNotFound
	}
	cp := *attempt
	cp.Answers = append([]domain.AttemptAnswer(nil), attempt.Answers...)
	s.attempts[attempt.QuizID] = append(s.attempts[attempt.QuizID], cp)
	return nil
}

// ListQuizAttempts returns a quiz's attempts, newest first.
func (s *Store) ListQuizAttempts(_ context.Context, owner domain.OwnerID, quizID string) ([]domain.QuizAttempt, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[quizID]
	if !ok || q.OwnerID != owner {
		return nil, domain.ErrNotFound
	}
	out := append([]domain.QuizAttempt{}, s.attempts[quizID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

// --- flashcards ---

// SaveFlashcardSet inserts a set, assigning card IDs and order.
func (s *Store) SaveFlashcardSet(_ context.Context, set *domain.FlashcardSet) error {
	if set == nil || set.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := set.OwnerID.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDocumentRef(set.OwnerID, set.DocumentID); err != nil {
		return err
	}
	for i := range set.Cards {
		if set.Cards[i].ID == "" {
			set.Cards[i].ID = uuid.NewString()
		}
		set.Cards[i].OrderIndex = i
		set.Cards[i].MasteryLevel = domain.ClampMastery(set.Cards[i].MasteryLevel)
	}
	cp := *set
	cp.Cards = append([]domain.Flashcard(nil), set.Cards...)
	s.sets[set.ID] = cp
	return nil
}

// GetFlashcardSet retrieves a set with its cards.
func (s *Store) GetFlashcardSet(_ context.Context, owner domain.OwnerID, id string) (*domain.FlashcardSet, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs, ok := s.sets[id]
	if !ok || fs.OwnerID != owner {
		return nil, domain.ErrNotFound
	}
	fs.Cards = append([]domain.Flashcard(nil), fs.Cards...)
	return &fs, nil
}

// ListFlashcardSets returns the owner's sets without cards, newest first.
func (s *Store) ListFlashcardSets(_ context.Context, owner domain.OwnerID) ([]domain.FlashcardSet, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.FlashcardSet, 0)
	for _, fs := range s.sets {
		if fs.OwnerID == owner {
			fs.Cards = nil
			out = append(out, fs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

// UpdateFlashcardMastery sets a card's mastery level, clamped to the valid range.
func (s *Store) UpdateFlashcardMastery(_ context.Context, owner domain.OwnerID, cardID string, level int) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, fs := range s.sets {
		if fs.OwnerID != owner {
			continue
		}
		for i := range fs.Cards {
			if fs.Cards[i].ID == cardID {
				fs.Cards[i].MasteryLevel = domain.ClampMastery(level)
				s.sets[id] = fs
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

// ReviewFlashcard logs a review and applies it to the card's mastery.
func (s *Store) ReviewFlashcard(_ context.Context, review *domain.FlashcardReview) error {
	if review == nil || review.CardID == "" {
		return domain.ErrInvalidInput
	}
	if err := review.OwnerID.Validate(); err != nil {
		return err
	}
	if err := domain.ValidateRating(review.Rating); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, fs := range s.sets {
		if fs.OwnerID != review.OwnerID {
			continue
		}
		for i := range fs.Cards {
			if fs.Cards[i].ID != review.CardID {
				continue
			}
			if review.ID == "" {
				review.ID = uuid.NewString()
			}
			if review.ReviewedAt.IsZero() {
				review.ReviewedAt = s.now().UTC()
			}
			review.LevelBefore = fs.Cards[i].MasteryLevel
			review.LevelAfter = domain.NextMastery(review.LevelBefore, review.Rating)
			fs.Cards[i].MasteryLevel = review.LevelAfter
			s.sets[id] = fs
			s.reviews = append(s.reviews, *review)
			return nil
		}
	}
	return domain.ErrNotFound
}

// dropReviews must be called with the lock held.
func (s *Store) dropReviews(fs domain.FlashcardSet) {
	cards := make(map[string]bool, len(fs.Cards))
	for _, c := range fs.Cards {
		cards[c.ID] = true
	}
	kept := s.reviews[:0]
	for _, r := range s.reviews {
		if !cards[r.CardID] {
			kept = append(kept, r)
		}
	}
	s.reviews = kept
}

// --- notes ---

// SaveNote inserts a note.
func (s *Store) SaveNote(_ context.Context, note *domain.Note) error {
	if note == nil || note.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := note.OwnerID.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDocumentRef(note.OwnerID, note.DocumentID); err != nil {
		return err
	}
	s.notes[note.ID] = *note
	return nil
}

// GetNote retrieves a note.
func (s *Store) GetNote(_ context.Context, owner domain.OwnerID, id string) (*domain.Note, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	if !ok || n.OwnerID != owner {
		return nil, domain.ErrNotFound
	}
	return &n, nil
}

// ListNotes returns the owner's notes, newest first, optionally for one document.
func (s *Store) ListNotes(_ context.Context, owner domain.OwnerID, documentID string) ([]domain.Note, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Note, 0)
	for _, n := range s.notes {
		if n.OwnerID != owner || (documentID != "" && n.DocumentID != documentID) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

// UpdateNoteContent replaces a note's content.
func (s *Store) UpdateNoteContent(_ context.Context, owner domain.OwnerID, id, content string) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.OwnerID != owner {
		return domain.ErrNotFound
	}
	n.Content = content
	n.UpdatedAt = s.now()
	s.notes[id] = n
	return nil
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(_ context.Context, owner domain.OwnerID, id string) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.OwnerID != owner {
		return domain.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

// checkDocumentRef must be called with the lock held. An empty ID is allowed.
func (s *Store) checkDocumentRef(owner domain.OwnerID, documentID string) error {
	if documentID == "" {
		return nil
	}
	if _, ok := s.ownedDocument(owner, documentID); !ok {
		return domain.ErrNotFound
	}
	return nil
}

func newer(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA < idB
}
