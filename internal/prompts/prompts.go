// Package prompts holds the built-in LLM prompt templates and renders them.
//
// Templates use text/template syntax. The file-backed prompt store writes
// these defaults to disk on first use so users can edit them.
package prompts

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
)

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaults = map[string]string{
	driven.PromptRAGSystem: `You are QuizBolt, an AI study assistant. Answer questions based strictly on the provided context. If the context is insufficient, say you are unsure rather than inventing details.`,

	driven.PromptRAGContext: `Context from the user's document(s):
{{.Context}}`,

	driven.PromptQuizSystem: `You are an educational quiz generator. Generate multiple-choice questions based on the provided content.

Difficulty Level: {{.DifficultyUpper}}
{{.Instruction}}

Rules:
- Generate exactly {{.Count}} questions
- Each question must have exactly 4 options
- Questions should test understanding at the {{.Difficulty}} level
- Include a brief explanation for each correct answer
- Return valid JSON only, no markdown

Response format (pure JSON, no code blocks):
{
  "questions": [
    {
      "question": "Question text here?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctIndex": 0,
      "explanation": "Brief explanation of why this is correct"
    }
  ]
}`,

	driven.PromptQuizUser: `Study Material Content:
{{.Context}}

Generate {{.Count}} {{.Difficulty}}-level multiple-choice questions based on this content.`,

	driven.PromptFlashcardsSystem: `You are an educational flashcard generator. Create flashcards that help with learning and memorization.

Rules:
- Generate exactly {{.Count}} flashcards
- Front should be a question, term, or concept
- Back should be a clear, concise answer or definition
- Focus on key concepts, definitions, and important facts
- Return valid JSON only, no markdown

Response format (pure JSON, no code blocks):
{
  "flashcards": [
    {
      "front": "What is [concept]?",
      "back": "Clear explanation or definition"
    }
  ]
}`,

	driven.PromptFlashcardsUser: `Study Material Content:
{{.Context}}

Generate {{.Count}} flashcards from this content.`,

	driven.PromptNotesSystem: `You are an expert study notes generator. Create well-organized, educational notes in Markdown format.

Style: {{.Style}}
{{.Instruction}}

Format guidelines:
- Use proper Markdown formatting (headers, lists, bold, etc.)
- Organize content logically
- Highlight key terms and concepts
- Keep language clear and easy to understand
- Do not include code blocks around the entire response`,

	driven.PromptNotesUser: `Study Material Content:
{{.Context}}

Generate {{.Style}} notes from this content in Markdown format.`,
}

// Default returns the built-in template for a prompt name.
func Default(name string) (string, bool) {
	p, ok := defaults[name]
	return p, ok
}

// Defaults returns a copy of every built-in template keyed by name.
func Defaults() map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out
}

// Render executes a template with data. Missing fields are an error so that
// a user-edited prompt with a typo fails loudly instead of sending "<no value>".
func Render(name, tmpl string, data any) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse prompt %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}

// Load fetches a template from store, falling back to the built-in default
// when store is nil or fails, and renders it with data.
func Load(store driven.PromptStore, name string, data any) (string, error) {
	tmpl, ok := defaults[name]
	if store != nil {
		if p, err := store.Load(name); err == nil && p != "" {
			tmpl = p
			ok = true
		}
	}
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return Render(name, tmpl, data)
}
