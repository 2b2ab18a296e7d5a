package httpapi

import (
	"time"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

type documentJSON struct {
	ID             string    `json:"id"`
	Label          string    `json:"label"`
	Kind           string    `json:"kind"`
	SourceRef      string    `json:"sourceRef,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	ChunkCount     *int      `json:"chunkCount,omitempty"`
	QuizCount      *int      `json:"quizCount,omitempty"`
	FlashcardCount *int      `json:"flashcardCount,omitempty"`
	NoteCount      *int      `json:"noteCount,omitempty"`
}

func toDocument(d domain.Document) documentJSON {
	return documentJSON{
		ID:        d.ID,
		Label:     d.Label,
		Kind:      d.Kind.String(),
		SourceRef: d.SourceRef,
		CreatedAt: d.CreatedAt,
	}
}

func toDocumentSummary(s domain.DocumentSummary) documentJSON {
	d := toDocument(s.Document)
	d.ChunkCount, d.QuizCount = &s.ChunkCount, &s.QuizCount
	d.FlashcardCount, d.NoteCount = &s.FlashcardCount, &s.NoteCount
	return d
}

type chunkJSON struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"documentId"`
	Index      int      `json:"index"`
	Text       string   `json:"text"`
	Distance   *float64 `json:"distance,omitempty"`
}

func toChunks(chunks []domain.RetrievedChunk) []chunkJSON {
	out := make([]chunkJSON, len(chunks))
	for i := range chunks {
		d := chunks[i].Distance
		out[i] = chunkJSON{
			ID:         chunks[i].ID,
			DocumentID: chunks[i].DocumentID,
			Index:      chunks[i].Index,
			Text:       chunks[i].Text,
			Distance:   &d,
		}
	}
	return out
}

type quizJSON struct {
	ID         string                `json:"id"`
	DocumentID string                `json:"documentId,omitempty"`
	Title      string                `json:"title"`
	Difficulty string                `json:"difficulty"`
	Questions  []domain.QuizQuestion `json:"questions"`
	CreatedAt  time.Time             `json:"createdAt"`
}

func toQuiz(q *domain.Quiz) quizJSON {
	questions := q.Questions
	if questions == nil {
		questions = []domain.QuizQuestion{}
	}
	return quizJSON{
		ID:         q.ID,
		DocumentID: q.DocumentID,
		Title:      q.Title,
		Difficulty: q.Difficulty.String(),
		Questions:  questions,
		CreatedAt:  q.CreatedAt,
	}
}

type attemptJSON struct {
	ID              string                 `json:"id"`
	QuizID          string                 `json:"quizId"`
	Score           int                    `json:"score"`
	TotalCorrect    int                    `json:"totalCorrect"`
	TotalQuestions  int                    `json:"totalQuestions"`
	DurationSeconds int                    `json:"durationSeconds"`
	Answers         []domain.AttemptAnswer `json:"answers"`
	CompletedAt     time.Time              `json:"completedAt"`
}

func toAttempt(a *domain.QuizAttempt) attemptJSON {
	return attemptJSON{
		ID:              a.ID,
		QuizID:          a.QuizID,
		Score:           a.Score,
		TotalCorrect:    a.TotalCorrect,
		TotalQuestions:  a.TotalQuestions,
		DurationSeconds: int(a.Duration / time.Second),
		Answers:         a.Answers,
		CompletedAt:     a.CompletedAt,
	}
}

type flashcardSetJSON struct {
	ID            string             `json:"id"`
	DocumentID    string             `json:"documentId,omitempty"`
	Title         string             `json:"title"`
	Cards         []domain.Flashcard `json:"cards"`
	MasteredCount int                `json:"masteredCount"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func toFlashcardSet(s *domain.FlashcardSet) flashcardSetJSON {
	cards := s.Cards
	if cards == nil {
		cards = []domain.Flashcard{}
	}
	return flashcardSetJSON{
		ID:            s.ID,
		DocumentID:    s.DocumentID,
		Title:         s.Title,
		Cards:         cards,
		MasteredCount: s.MasteredCount(),
		CreatedAt:     s.CreatedAt,
	}
}

type noteJSON struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Style      string    `json:"style"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toNote(n *domain.Note) noteJSON {
	return noteJSON{
		ID:         n.ID,
		DocumentID: n.DocumentID,
		Title:      n.Title,
		Content:    n.Content,
		Style:      n.Style.String(),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}
