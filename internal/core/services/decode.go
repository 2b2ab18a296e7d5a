package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")

type quizPayload struct {
	Questions []struct {
		Question     string   `json:"question"`
		Options      []string `json:"options"`
		CorrectIndex *int     `json:"correctIndex"`
		Explanation  string   `json:"explanation"`
	} `json:"questions"`
}

type flashcardPayload struct {
	Flashcards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"flashcards"`
}

// decodeJSON unmarshals raw provider output into v. It tries the text as
// is, then once more on the contents of a code fence or, failing that, the
// outermost {...} span.
func decodeJSON(raw string, v any) error {
	text := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	candidate := ""
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidate = strings.TrimSpace(m[1])
	} else if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		candidate = text[start : end+1]
	}
	if candidate == "" {
		return fmt.Errorf("%w: no JSON object in response", domain.ErrGenerationParse)
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGenerationParse, err)
	}
	return nil
}

// DecodeQuiz parses and validates quiz questions from provider output.
// Every question needs text, exactly four non-empty options and a correct
// index in range. The explanation is optional.
func DecodeQuiz(raw string) ([]domain.QuizQuestion, error) {
	var p quizPayload
	if err := decodeJSON(raw, &p); err != nil {
		return nil, err
	}
	if len(p.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", domain.ErrGenerationParse)
	}

	out := make([]domain.QuizQuestion, len(p.Questions))
	for i, q := range p.Questions {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", domain.ErrGenerationParse, i+1)
		}
		if len(q.Options) != domain.QuizOptionCount {
			return nil, fmt.Errorf("%w: question %d has %d options", domain.ErrGenerationParse, i+1, len(q.Options))
		}
		options := make([]string, len(q.Options))
		for j, o := range q.Options {
			options[j] = strings.TrimSpace(o)
			if options[j] == "" {
				return nil, fmt.Errorf("%w: question %d has an empty option", domain.ErrGenerationParse, i+1)
			}
		}
		if q.CorrectIndex == nil || *q.CorrectIndex < 0 || *q.CorrectIndex >= domain.QuizOptionCount {
			return nil, fmt.Errorf("%w: question %d has no valid correctIndex", domain.ErrGenerationParse, i+1)
		}
		out[i] = domain.QuizQuestion{
			Text:          text,
			Options:       options,
			CorrectOption: *q.CorrectIndex,
			Explanation:   strings.TrimSpace(q.Explanation),
			OrderIndex:    i,
		}
	}
	return out, nil
}

// DecodeFlashcards parses and validates flashcards from provider output.
func DecodeFlashcards(raw string) ([]domain.Flashcard, error) {
	var p flashcardPayload
	if err := decodeJSON(raw, &p); err != nil {
		return nil, err
	}
	if len(p.Flashcards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards", domain.ErrGenerationParse)
	}

	out := make([]domain.Flashcard, len(p.Flashcards))
	for i, c := range p.Flashcards {
		front, back := strings.TrimSpace(c.Front), strings.TrimSpace(c.Back)
		if front == "" || back == "" {
			return nil, fmt.Errorf("%w: flashcard %d is missing a side", domain.ErrGenerationParse, i+1)
		}
		out[i] = domain.Flashcard{Front: front, Back: back, OrderIndex: i, AIGenerated: true}
	}
	return out, nil
}

var wholeFence = regexp.MustCompile("(?s)^```(?:markdown|md)?[ \\t]*\\n(.*?)\\n?```$")

// CleanNotes strips a code fence wrapping the whole response.
// Empty output is a parse error.
func CleanNotes(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if m := wholeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty notes", domain.ErrGenerationParse)
	}
	return text, nil
}
