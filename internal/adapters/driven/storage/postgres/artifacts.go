package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// SaveQuiz inserts a quiz with its questions, assigning question IDs and order.
func (s *Store) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil || quiz.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := quiz.OwnerID.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := checkDocumentRef(ctx, tx, quiz.OwnerID, quiz.DocumentID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO quizzes (id, owner_id, document_id, title, difficulty, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, quiz.ID, string(quiz.OwnerID), nullable(quiz.DocumentID), quiz.Title,
			string(quiz.Difficulty), quiz.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert quiz: %w", err)
		}

		for i := range quiz.Questions {
			q := &quiz.Questions[i]
			if q.ID == "" {
				q.ID = uuid.NewString()
			}
			q.OrderIndex = i
			options, err := json.Marshal(q.Options)
			if err != nil {
				return fmt.Errorf("failed to marshal options: %w", err)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO quiz_questions (id, quiz_id, order_index, text, options, correct_option, explanation)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, q.ID, quiz.ID, q.OrderIndex, q.Text, options, q.CorrectOption, q.Explanation); err != nil {
				return fmt.Errorf("failed to insert question %d: %w", i, err)
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

	quiz, err := scanQuiz(s.pool.QueryRow(ctx, `
		SELECT id, owner_id, document_id, title, difficulty, created_at
		FROM quizzes WHERE id = $1 AND owner_id = $2
	`, id, string(owner)))
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, order_index, text, options, correct_option, explanation
		FROM quiz_questions WHERE quiz_id = $1 ORDER BY order_index ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q domain.QuizQuestion
		var options []byte
		if err := rows.Scan(&q.ID, &q.OrderIndex, &q.Text, &options, &q.CorrectOption, &q.Explanation); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal options: %w", err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}
	return quiz, nil
}

// ListQuizzes returns the owner's quizzes without questions, newest first.
func (s *Store) ListQuizzes(ctx context.Context, owner domain.OwnerID) ([]domain.Quiz, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, document_id, title, difficulty, created_at
		FROM quizzes WHERE owner_id = $1
		ORDER BY created_at DESC, id ASC
	`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quiz rows: %w", err)
	}
	return out, nil
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
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, owner_id, quiz_id, score, total_correct, total_questions,
			duration_ms, answers, completed_at)
		SELECT $1::text, $2::text, id, $3::int, $4::int, $5::int, $6::bigint, $7::jsonb, $8::timestamptz
		FROM quizzes WHERE id = $9 AND owner_id = $2
	`, attempt.ID, string(attempt.OwnerID), attempt.Score, attempt.TotalCorrect, attempt.TotalQuestions,
		attempt.Duration.Milliseconds(), answers, attempt.CompletedAt, attempt.QuizID)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return expectAffected(tag)
}

// ListQuizAttempts returns a quiz's attempts, newest first.
func (s *Store) ListQuizAttempts(ctx context.Context, owner domain.OwnerID, quizID string) ([]domain.QuizAttempt, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var one int
	err := s.pool.QueryRow(ctx, "SELECT 1 FROM quizzes WHERE id = $1 AND owner_id = $2",
		quizID, string(owner)).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check quiz: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, quiz_id, score, total_correct, total_questions, duration_ms, answers, completed_at
		FROM quiz_attempts WHERE quiz_id = $1
		ORDER BY completed_at DESC, id ASC
	`, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuizAttempt, 0)
	for rows.Next() {
		var a domain.QuizAttempt
		var ownerID string
		var durationMS int64
		var answers []byte
		if err := rows.Scan(&a.ID, &ownerID, &a.QuizID, &a.Score, &a.TotalCorrect, &a.TotalQuestions,
			&durationMS, &answers, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", err)
		}
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
		}
		a.OwnerID = domain.OwnerID(ownerID)
		a.Duration = time.Duration(durationMS) * time.Millisecond
		a.CompletedAt = a.CompletedAt.UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempt rows: %w", err)
	}
	return out, nil
}

// SaveFlashcardSet inserts a set with its cards, assigning card IDs and order.
func (s *Store) SaveFlashcardSet(ctx context.Context, set *domain.FlashcardSet) error {
	if set == nil || set.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := set.OwnerID.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := checkDocumentRef(ctx, tx, set.OwnerID, set.DocumentID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO flashcard_sets (id, owner_id, document_id, title, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, set.ID, string(set.OwnerID), nullable(set.DocumentID), set.Title, set.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert flashcard set: %w", err)
		}

		for i := range set.Cards {
			c := &set.Cards[i]
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			c.OrderIndex = i
			c.MasteryLevel = domain.ClampMastery(c.MasteryLevel)
			if _, err := tx.Exec(ctx, `
				INSERT INTO flashcards (id, set_id, order_index, front, back, mastery_level, ai_generated)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, c.ID, set.ID, c.OrderIndex, c.Front, c.Back, c.MasteryLevel, c.AIGenerated); err != nil {
				return fmt.Errorf("failed to insert card %d: %w", i, err)
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

	set, err := scanFlashcardSet(s.pool.QueryRow(ctx, `
		SELECT id, owner_id, document_id, title, created_at
		FROM flashcard_sets WHERE id = $1 AND owner_id = $2
	`, id, string(owner)))
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, order_index, front, back, mastery_level, ai_generated
		FROM flashcards WHERE set_id = $1 ORDER BY order_index ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Flashcard
		if err := rows.Scan(&c.ID, &c.OrderIndex, &c.Front, &c.Back, &c.MasteryLevel, &c.AIGenerated); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		set.Cards = append(set.Cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}
	return set, nil
}

// ListFlashcardSets returns the owner's sets without cards, newest first.
func (s *Store) ListFlashcardSets(ctx context.Context, owner domain.OwnerID) ([]domain.FlashcardSet, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, document_id, title, created_at
		FROM flashcard_sets WHERE owner_id = $1
		ORDER BY created_at DESC, id ASC
	`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcard sets: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flashcard set rows: %w", err)
	}
	return out, nil
}

// UpdateFlashcardMastery sets a card's mastery level, clamped to the valid range.
func (s *Store) UpdateFlashcardMastery(ctx context.Context, owner domain.OwnerID, cardID string, level int) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE flashcards SET mastery_level = $1
		WHERE id = $2 AND set_id IN (SELECT id FROM flashcard_sets WHERE owner_id = $3)
	`, domain.ClampMastery(level), cardID, string(owner))
	if err != nil {
		return fmt.Errorf("failed to update mastery: %w", err)
	}
	return expectAffected(tag)
}

// ReviewFlashcard logs a review and applies it to the card's mastery.
// The card row is locked so concurrent reviews apply one after another.
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

	return s.withTx(ctx, func(tx pgx.Tx) error {
		var level int
		err := tx.QueryRow(ctx, `
			SELECT mastery_level FROM flashcards
			WHERE id = $1 AND set_id IN (SELECT id FROM flashcard_sets WHERE owner_id = $2)
			FOR UPDATE
		`, review.CardID, string(review.OwnerID)).Scan(&level)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to read mastery: %w", err)
		}

		if review.ID == "" {
			review.ID = uuid.NewString()
		}
		if review.ReviewedAt.IsZero() {
			review.ReviewedAt = s.now().UTC()
		}
		review.LevelBefore = level
		review.LevelAfter = domain.NextMastery(level, review.Rating)

		if _, err := tx.Exec(ctx, "UPDATE flashcards SET mastery_level = $1 WHERE id = $2",
			review.LevelAfter, review.CardID); err != nil {
			return fmt.Errorf("failed to update mastery: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO flashcard_reviews (id, owner_id, flashcard_id, rating, level_before, level_after, reviewed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, review.ID, string(review.OwnerID), review.CardID, review.Rating,
			review.LevelBefore, review.LevelAfter, review.ReviewedAt); err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}
		return nil
	})
}

// SaveNote inserts a note.
func (s *Store) SaveNote(ctx context.Context, note *domain.Note) error {
	if note == nil || note.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := note.OwnerID.Validate(); err != nil {
		return err
	}

	updatedAt := note.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = note.CreatedAt
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := checkDocumentRef(ctx, tx, note.OwnerID, note.DocumentID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO notes (id, owner_id, document_id, title, content, style, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, note.ID, string(note.OwnerID), nullable(note.DocumentID), note.Title, note.Content,
			string(note.Style), note.CreatedAt, updatedAt); err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}
		return nil
	})
}

// GetNote retrieves a note.
func (s *Store) GetNote(ctx context.Context, owner domain.OwnerID, id string) (*domain.Note, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return scanNote(s.pool.QueryRow(ctx, `
		SELECT id, owner_id, document_id, title, content, style, created_at, updated_at
		FROM notes WHERE id = $1 AND owner_id = $2
	`, id, string(owner)))
}

// ListNotes returns the owner's notes, newest first, optionally for one document.
func (s *Store) ListNotes(ctx context.Context, owner domain.OwnerID, documentID string) ([]domain.Note, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, owner_id, document_id, title, content, style, created_at, updated_at
		FROM notes WHERE owner_id = $1`
	args := []any{string(owner)}
	if documentID != "" {
		query += " AND document_id = $2"
		args = append(args, documentID)
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}
	return out, nil
}

// UpdateNoteContent replaces a note's content and bumps UpdatedAt.
func (s *Store) UpdateNoteContent(ctx context.Context, owner domain.OwnerID, id, content string) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, "UPDATE notes SET content = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4",
		content, s.now().UTC(), id, string(owner))
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return expectAffected(tag)
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(ctx context.Context, owner domain.OwnerID, id string) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1 AND owner_id = $2", id, string(owner))
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return expectAffected(tag)
}

func scanQuiz(row pgx.Row) (*domain.Quiz, error) {
	var q domain.Quiz
	var ownerID, difficulty string
	var documentID *string
	if err := row.Scan(&q.ID, &ownerID, &documentID, &q.Title, &difficulty, &q.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan quiz: %w", err)
	}
	q.OwnerID = domain.OwnerID(ownerID)
	q.DocumentID = deref(documentID)
	q.Difficulty = domain.Difficulty(difficulty)
	q.CreatedAt = q.CreatedAt.UTC()
	return &q, nil
}

func scanFlashcardSet(row pgx.Row) (*domain.FlashcardSet, error) {
	var set domain.FlashcardSet
	var ownerID string
	var documentID *string
	if err := row.Scan(&set.ID, &ownerID, &documentID, &set.Title, &set.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan flashcard set: %w", err)
	}
	set.OwnerID = domain.OwnerID(ownerID)
	set.DocumentID = deref(documentID)
	set.CreatedAt = set.CreatedAt.UTC()
	return &set, nil
}

func scanNote(row pgx.Row) (*domain.Note, error) {
	var n domain.Note
	var ownerID, style string
	var documentID *string
	if err := row.Scan(&n.ID, &ownerID, &documentID, &n.Title, &n.Content, &style,
		&n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}
	n.OwnerID = domain.OwnerID(ownerID)
	n.DocumentID = deref(documentID)
	n.Style = domain.NoteStyle(style)
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return &n, nil
}
