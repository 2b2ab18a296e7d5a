// Package fake provides a deterministic offline LLM.
//
// It recognises the built-in prompts by shape and answers with well-formed
// output built from sentences of the supplied material: quiz and flashcard
// JSON when asked for exactly N items, Markdown for notes, and a short
// grounded reply otherwise. The content is not meaningful study material.
package fake

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the fake model name.
const DefaultModel = "fake-chat"

var (
	countPattern    = regexp.MustCompile(`(?i)exactly (\d+) (questions|flashcards)`)
	sentenceEnd     = regexp.MustCompile(`[.!?]\s+|\n+`)
	materialMarkers = []string{"Study Material Content:", "Context from the user's document(s):"}
)

// LLMService answers from the prompt's own material.
type LLMService struct {
	model string
}

// NewLLMService creates a fake LLM.
func NewLLMService(model string) *LLMService {
	if model == "" {
		model = DefaultModel
	}
	return &LLMService{model: model}
}

// Chat returns output shaped like the request.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var all strings.Builder
	for _, m := range messages {
		all.WriteString(m.Content)
		all.WriteString("\n")
	}
	prompt := all.String()
	facts := sentences(material(messages))

	if m := countPattern.FindStringSubmatch(prompt); m != nil && opts.JSON {
		n, _ := strconv.Atoi(m[1])
		if strings.EqualFold(m[2], "questions") {
			return quiz(n, facts)
		}
		return flashcards(n, facts)
	}
	if wantsNotes(messages) {
		return notes(facts), nil
	}
	return answer(facts), nil
}

// wantsNotes reports whether the system instruction asks for notes.
// The user's own words never select the notes shape.
func wantsNotes(messages []driven.ChatMessage) bool {
	for _, m := range messages {
		if m.Role == "system" && strings.Contains(strings.ToLower(m.Content), "notes") {
			return true
		}
	}
	return false
}

// material returns the text after the last known material marker.
// Without a marker there is no material, whatever the user asked.
func material(messages []driven.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, marker := range materialMarkers {
			if idx := strings.Index(messages[i].Content, marker); idx >= 0 {
				text := messages[i].Content[idx+len(marker):]
				if end := strings.Index(text, "\n\nGenerate "); end >= 0 {
					text = text[:end]
				}
				return text
			}
		}
	}
	return ""
}

func sentences(text string) []string {
	var out []string
	for _, part := range sentenceEnd.Split(text, -1) {
		part = strings.TrimLeft(strings.TrimSpace(part), "-*#>0123456789[] ")
		part = strings.TrimRight(part, ".!? ")
		if len(part) >= 3 {
			out = append(out, part)
		}
	}
	return out
}

func pick(facts []string, i int) string {
	if len(facts) == 0 {
		return "the material"
	}
	return facts[i%len(facts)]
}

func quiz(n int, facts []string) (string, error) {
	type question struct {
		Question     string   `json:"question"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correctIndex"`
		Explanation  string   `json:"explanation"`
	}
	qs := make([]question, n)
	for i := range qs {
		correct := i % 4
		opts := []string{"Not covered", "The opposite is stated", "None of the above", "All of the above"}
		opts[correct] = pick(facts, i)
		qs[i] = question{
			Question:     fmt.Sprintf("Question %d: which statement appears in the material?", i+1),
			Options:      opts,
			CorrectIndex: correct,
			Explanation:  "The material states: " + pick(facts, i),
		}
	}
	out, err := json.Marshal(map[string]any{"questions": qs})
	return string(out), err
}

func flashcards(n int, facts []string) (string, error) {
	type card struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	}
	cards := make([]card, n)
	for i := range cards {
		cards[i] = card{Front: fmt.Sprintf("Key point %d", i+1), Back: pick(facts, i)}
	}
	out, err := json.Marshal(map[string]any{"flashcards": cards})
	return string(out), err
}

func notes(facts []string) string {
	var b strings.Builder
	b.WriteString("# Study Notes\n\n## Key Points\n\n")
	if len(facts) == 0 {
		b.WriteString("- No material provided\n")
	}
	for i, f := range facts {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "- **Point %d:** %s\n", i+1, f)
	}
	return b.String()
}

func answer(facts []string) string {
	if len(facts) == 0 {
		return "I'm not sure. No relevant material was provided."
	}
	return "Based on your material: " + facts[0]
}

// ModelName returns the configured model name.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *LLMService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
