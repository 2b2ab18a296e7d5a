package domain

import (
	"fmt"
	"math"
	"time"
)

// Difficulty is the requested difficulty of a generated quiz.
type Difficulty string

// Quiz difficulties.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid returns true if the difficulty is recognised.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Difficulty) String() string {
	return string(d)
}

// Instruction returns the guidance given to the model for this difficulty.
func (d Difficulty) Instruction() string {
	switch d {
	case DifficultyEasy:
		return "Create straightforward questions that test basic recall and fundamental understanding. " +
			"Options should have one clearly correct answer."
	case DifficultyHard:
		return "Create challenging questions that require deep understanding, analysis, and critical thinking. " +
			"Include nuanced options where distinctions are subtle."
	default:
		return "Create questions that require understanding and application of concepts. " +
			"Include some questions that require connecting multiple ideas."
	}
}

// QuizOptionCount is the number of options every quiz question has.
const QuizOptionCount = 4

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctIndex"`
	Explanation   string   `json:"explanation"`
	OrderIndex    int      `json:"orderIndex"`
}

// Quiz is a generated multiple-choice quiz over one document.
type Quiz struct {
	ID         string
	OwnerID    OwnerID
	DocumentID string
	Title      string
	Difficulty Difficulty
	Questions  []QuizQuestion
	CreatedAt  time.Time
}

// AttemptAnswer is the graded answer to one question.
type AttemptAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedOption *int   `json:"selectedOption"`
	CorrectOption  int    `json:"correctOption"`
	IsCorrect      bool   `json:"isCorrect"`
	UserAnswer     string `json:"userAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	Explanation    string `json:"explanation"`
}

// QuizAttempt is a graded submission of a quiz.
type QuizAttempt struct {
	ID             string
	OwnerID        OwnerID
	QuizID         string
	Score          int
	TotalCorrect   int
	TotalQuestions int
	Duration       time.Duration
	Answers        []AttemptAnswer
	CompletedAt    time.Time
}

// ScorePercent returns round(correct / total * 100), or 0 for an empty quiz.
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Mastery bounds for flashcards.
const (
	MinMastery      = 0
	MaxMastery      = 5
	MasteredAtLevel = 4
)

// ClampMastery limits a mastery level to [MinMastery, MaxMastery].
func ClampMastery(level int) int {
	if level < MinMastery {
		return MinMastery
	}
	if level > MaxMastery {
		return MaxMastery
	}
	return level
}

// Flashcard is one front/back study card.
type Flashcard struct {
	ID           string `json:"id,omitempty"`
	Front        string `json:"front"`
	Back         string `json:"back"`
	OrderIndex   int    `json:"orderIndex"`
	MasteryLevel int    `json:"masteryLevel"`
	AIGenerated  bool   `json:"aiGenerated"`
}

// IsMastered reports whether the card has reached the mastered level.
func (f Flashcard) IsMastered() bool {
	return f.MasteryLevel >= MasteredAtLevel
}

// FlashcardSet is a titled group of flashcards, optionally tied to a document.
type FlashcardSet struct {
	ID         string
	OwnerID    OwnerID
	DocumentID string
	Title      string
	Cards      []Flashcard
	CreatedAt  time.Time
}

// MasteredCount returns the number of mastered cards.
func (s FlashcardSet) MasteredCount() int {
	n := 0
	for _, c := range s.Cards {
		if c.IsMastered() {
			n++
		}
	}
	return n
}

// Review ratings run from MinRating (forgot) to MaxRating (easy).
const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRating rejects ratings outside [MinRating, MaxRating].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinRating, MaxRating)
	}
	return nil
}

// NextMastery applies one review to a mastery level: a rating of 4 or more
// moves it up one step, 2 or less moves it down one, and 3 leaves it.
func NextMastery(level, rating int) int {
	switch {
	case rating >= 4:
		level++
	case rating <= 2:
		level--
	}
	return ClampMastery(level)
}

// FlashcardReview is one logged review of a card.
type FlashcardReview struct {
	ID          string    `json:"id"`
	OwnerID     OwnerID   `json:"-"`
	CardID      string    `json:"cardId"`
	Rating      int       `json:"rating"`
	LevelBefore int       `json:"levelBefore"`
	LevelAfter  int       `json:"masteryLevel"`
	ReviewedAt  time.Time `json:"reviewedAt"`
}

// NoteStyle is the requested shape of generated notes.
type NoteStyle string

// Note styles.
const (
	NoteStyleOutline  NoteStyle = "outline"
	NoteStyleSummary  NoteStyle = "summary"
	NoteStyleDetailed NoteStyle = "detailed"
)

// IsValid returns true if the style is recognised.
func (s NoteStyle) IsValid() bool {
	switch s {
	case NoteStyleOutline, NoteStyleSummary, NoteStyleDetailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s NoteStyle) String() string {
	return string(s)
}

// Instruction returns the guidance given to the model for this style.
func (s NoteStyle) Instruction() string {
	switch s {
	case NoteStyleOutline:
		return "Create a structured outline with main topics and subtopics using bullet points and numbered lists."
	case NoteStyleDetailed:
		return "Create comprehensive study notes covering all topics in depth with examples and explanations."
	default:
		return "Create a concise summary highlighting key points, main ideas, and important takeaways."
	}
}

// Note is a Markdown study note generated from a document.
type Note struct {
	ID         string
	OwnerID    OwnerID
	DocumentID string
	Title      string
	Content    string
	Style      NoteStyle
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
