package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// ==================== Quizzes ====================

// SaveQuiz inserts a quiz with its questions, assigning question IDs and order.
func (s *Store) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil || quiz.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := quiz.OwnerID.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkDocumentRef(ctx, tx, quiz.OwnerID, quiz.DocumentID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quizzes (id, owner_id, document_id, title, difficulty, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, quiz.ID, string(quiz.OwnerID), nullString(quiz.DocumentID), quiz.Title,
			string(quiz.Difficulty), toUnix(quiz.CreatedAt)); err != nil {
			return fmt.Errorf("inserting quiz: %w", err)
		}

		for i := range quiz.Questions {
			q := &quiz.Questions[i]
			if q.ID == "" {
				q.ID = uuid.NewString()
			}
			q.OrderIndex = i
			options, err := json.Marshal(q.Options)
			if err != nil {
				return fmt.Errorf("marshalling options: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO quiz_questions (id, quiz_id, order_index, text, options, correct_option, explanation)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, q.ID, quiz.ID, q.OrderIndex, q.Text, string(options), q.CorrectOption, q.Explanation); err != nil {
				return fmt.Errorf("inserting question %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetQuiz retrieves a quiz with its questions in order.
func (s *Store) GetQuiz(ctx context.Context, owner domain.OwnerID, id string) (*domain.Quiz, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, document_id, title, difficulty, created_at
		FROM quizzes WHERE id = ? AND owner_id = ?
	`, id, string(owner))
	quiz, err := scanQuiz(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_index, text, options, correct_option, explanation
		FROM quiz_questions WHERE quiz_id = ? ORDER BY order_index ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q domain.QuizQuestion
		var options string
		if err := rows.Scan(&q.ID, &q.OrderIndex, &q.Text, &options, &q.CorrectOption, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshalling options: %w", err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, rows.Err()
}

// ListQuizzes returns the owner's quizzes without questions, newest first.
func (s *Store) ListQuizzes(ctx context.Context, owner domain.OwnerID) ([]domain.Quiz, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, document_id, title, difficulty, created_at
		FROM quizzes WHERE owner_id = ?
		ORDER BY created_at DESC, id ASC
	`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("querying quizzes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Quiz, 0)
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *quiz)
	}
	return out, rows.Err()
}

// SaveQuizAttempt records an attempt against an owned quiz.
func (s *Store) SaveQuizAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	if attempt == nil || attempt.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := attempt.OwnerID.Validate(); err != nil {
		return err
	}

	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshalling answers: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_attempts (id, owner_id, quiz_id, score, total_correct, total_questions,
			duration_ms, answers, completed_at)
		SELECT ?, ?, id, ?, ?, ?, ?, ?, ?
		FROM quizzes WHERE id = ? AND owner_id = ?
	`, attempt.ID, string(attempt.OwnerID), attempt.Score, attempt.TotalCorrect, attempt.TotalQuestions,
		attempt.Duration.Milliseconds(), string(answers), toUnix(attempt.CompletedAt),
		attempt.QuizID, string(attempt.OwnerID))
	if err != nil {
		return fmt.Errorf("inserting attempt: %w", err)
	}
	return expectAffected(res)
}

// ListQuizAttempts returns a quiz's attempts, newest first.
func (s *Store) ListQuizAttempts(ctx context.Context, owner domain.OwnerID, quizID string) ([]domain.QuizAttempt, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM quizzes WHERE id = ? AND owner_id = ?",
		quizID, string(owner)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking quiz: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, quiz_id, score, total_correct, total_questions, duration_ms, answers, completed_at
		FROM quiz_attempts WHERE quiz_id = ?
		ORDER BY completed_at DESC, id ASC
	`, quizID)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuizAttempt, 0)
	for rows.Next() {
		var a domain.QuizAttempt
		var durationMS, completedAt int64
		var answers string
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.QuizID, &a.Score, &a.TotalCorrect, &a.TotalQuestions,
			&durationMS, &answers, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			return nil, fmt.Errorf("unmarshalling answers: %w", err)
		}
		a.Duration = time.Duration(durationMS) * time.Millisecond
		a.CompletedAt = fromUnix(completedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ==================== Flashcards ====================

// SaveFlashcardSet inserts a set with its cards, assigning card IDs and order.
func (s *Store) SaveFlashcardSet(ctx context.Context, set *domain.FlashcardSet) error {
	if set == nil || set.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := set.OwnerID.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkDocumentRef(ctx, tx, set.OwnerID, set.DocumentID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO flashcard_sets (id, owner_id, document_id, title, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, set.ID, string(set.OwnerID), nullString(set.DocumentID), set.Title, toUnix(set.CreatedAt)); err != nil {
			return fmt.Errorf("inserting flashcard set: %w", err)
		}

		for i := range set.Cards {
			c := &set.Cards[i]
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			c.OrderIndex = i
			c.MasteryLevel = domain.ClampMastery(c.MasteryLevel)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO flashcards (id, set_id, order_index, front, back, mastery_level, ai_generated)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, c.ID, set.ID, c.OrderIndex, c.Front, c.Back, c.MasteryLevel, c.AIGenerated); err != nil {
				return fmt.Errorf("inserting card %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetFlashcardSet retrieves a set with its cards in order.
func (s *Store) GetFlashcardSet(ctx context.Context, owner domain.OwnerID, id string) (*domain.FlashcardSet, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, document_id, title, created_at
		FROM flashcard_sets WHERE id = ? AND owner_id = ?
	`, id, string(owner))
	set, err := scanFlashcardSet(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_index, front, back, mastery_level, ai_generated
		FROM flashcards WHERE set_id = ? ORDER BY order_index ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Flashcard
		if err := rows.Scan(&c.ID, &c.OrderIndex, &c.Front, &c.Back, &c.MasteryLevel, &c.AIGenerated); err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}
		set.Cards = append(set.Cards, c)
	}
	return set, rows.Err()
}

// ListFlashcardSets returns the owner's sets without cards, newest first.
func (s *Store) ListFlashcardSets(ctx context.Context, owner domain.OwnerID) ([]domain.FlashcardSet, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, document_id, title, created_at
		FROM flashcard_sets WHERE owner_id = ?
		ORDER BY created_at DESC, id ASC
	`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("querying flashcard sets: %w", err)
	}
	defer rows.Close()

	out := make([]domain.FlashcardSet, 0)
	for rows.Next() {
		set, err := scanFlashcardSet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *set)
	}
	return out, rows.Err()
}

// UpdateFlashcardMastery sets a card's mastery level, clamped to the valid range.
func (s *Store) UpdateFlashcardMastery(ctx context.Context, owner domain.OwnerID, cardID string, level int) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE flashcards SET mastery_level = ?
		WHERE id = ? AND set_id IN (SELECT id FROM flashcard_sets WHERE owner_id = ?)
	`, domain.ClampMastery(level), cardID, string(owner))
	if err != nil {
		return fmt.Errorf("updating mastery: %w", err)
	}
	return expectAffected(res)
}

// ReviewFlashcard logs a review and applies it to the card's mastery in one transaction.
func (s *Store) ReviewFlashcard(ctx context.Context, review *domain.FlashcardReview) error {
	if review == nil || review.CardID == "" {
		return domain.ErrInvalidInput
	}
	if err := review.OwnerID.Validate(); err != nil {
		return err
	}
	if err := domain.ValidateRating(review.Rating); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var level int
		err := tx.QueryRowContext(ctx, `
			SELECT mastery_level FROM flashcards
			WHERE id = ? AND set_id IN (SELECT id FROM flashcard_sets WHERE owner_id = ?)
		`, review.CardID, string(review.OwnerID)).Scan(&level)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("reading mastery: %w", err)
		}

		if review.ID == "" {
			review.ID = uuid.NewString()
		}
		if review.ReviewedAt.IsZero() {
			review.ReviewedAt = s.now().UTC()
		}
		review.LevelBefore = level
		review.LevelAfter = domain.NextMastery(level, review.Rating)

		if _, err := tx.ExecContext(ctx, "UPDATE flashcards SET mastery_level = ? WHERE id = ?",
			review.LevelAfter, review.CardID); err != nil {
			return fmt.Errorf("updating mastery: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO flashcard_reviews (id, owner_id, flashcard_id, rating, level_before, level_after, reviewed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, review.ID, string(review.OwnerID), review.CardID, review.Rating,
			review.LevelBefore, review.LevelAfter, toUnix(review.ReviewedAt)); err != nil {
			return fmt.Errorf("inserting review: %w", err)
		}
		return nil
	})
}

// ==================== Notes ====================

// SaveNote inserts a note.
func (s *Store) SaveNote(ctx context.Context, note *domain.Note) error {
	if note == nil || note.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := note.OwnerID.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkDocumentRef(ctx, tx, note.OwnerID, note.DocumentID); err != nil {
			return err
		}
		updatedAt := note.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = note.CreatedAt
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notes (id, owner_id, document_id, title, content, style, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, note.ID, string(note.OwnerID), nullString(note.DocumentID), note.Title, note.Content,
			string(note.Style), toUnix(note.CreatedAt), toUnix(updatedAt)); err != nil {
			return fmt.Errorf("inserting note: %w", err)
		}
		return nil
	})
}

// GetNote retrieves a note.
func (s *Store) GetNote(ctx context.Context, owner domain.OwnerID, id string) (*domain.Note, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, document_id, title, content, style, created_at, updated_at
		FROM notes WHERE id = ? AND owner_id = ?
	`, id, string(owner))
	return scanNote(row)
}

// ListNotes returns the owner's notes, newest first, optionally for one document.
func (s *Store) ListNotes(ctx context.Context, owner domain.OwnerID, documentID string) ([]domain.Note, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, owner_id, document_id, title, content, style, created_at, updated_at
		FROM notes WHERE owner_id = ?`
	args := []any{string(owner)}
	if documentID != "" {
		query += " AND document_id = ?"
		args = append(args, documentID)
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *note)
	}
	return out, rows.Err()
}

// UpdateNoteContent replaces a note's content and bumps UpdatedAt.
func (s *Store) UpdateNoteContent(ctx context.Context, owner domain.OwnerID, id, content string) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "UPDATE notes SET content = ?, updated_at = ? WHERE id = ? AND owner_id = ?",
		content, toUnix(s.now()), id, string(owner))
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	return expectAffected(res)
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(ctx context.Context, owner domain.OwnerID, id string) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND owner_id = ?", id, string(owner))
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return expectAffected(res)
}

// ==================== Scanners ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row scanner) (*domain.Quiz, error) {
	var q domain.Quiz
	var documentID sql.NullString
	var createdAt int64
	if err := row.Scan(&q.ID, &q.OwnerID, &documentID, &q.Title, &q.Difficulty, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning quiz: %w", err)
	}
	q.DocumentID = documentID.String
	q.CreatedAt = fromUnix(createdAt)
	return &q, nil
}

func scanFlashcardSet(row scanner) (*domain.FlashcardSet, error) {
	var set domain.FlashcardSet
	var documentID sql.NullString
	var createdAt int64
	if err := row.Scan(&set.ID, &set.OwnerID, &documentID, &set.Title, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning flashcard set: %w", err)
	}
	set.DocumentID = documentID.String
	set.CreatedAt = fromUnix(createdAt)
	return &set, nil
}

func scanNote(row scanner) (*domain.Note, error) {
	var n domain.Note
	var documentID sql.NullString
	var createdAt, updatedAt int64
	if err := row.Scan(&n.ID, &n.OwnerID, &documentID, &n.Title, &n.Content, &n.Style,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}
	n.DocumentID = documentID.String
	n.CreatedAt = fromUnix(createdAt)
	n.UpdatedAt = fromUnix(updatedAt)
	return &n, nil
}
