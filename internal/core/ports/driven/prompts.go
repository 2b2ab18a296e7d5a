package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// Templates use text/template syntax; the fields available to each are
// listed next to its name.
const (
	// PromptRAGSystem is the grounding instruction for question answering. No fields.
	PromptRAGSystem = "rag_system"

	// PromptRAGContext wraps retrieved context. Fields: .Context.
	PromptRAGContext = "rag_context"

	// PromptQuizSystem instructs quiz generation.
	// Fields: .Count, .Difficulty, .DifficultyUpper, .Instruction.
	PromptQuizSystem = "quiz_system"

	// PromptQuizUser carries the material for a quiz. Fields: .Context, .Count, .Difficulty.
	PromptQuizUser = "quiz_user"

	// PromptFlashcardsSystem instructs flashcard generation. Fields: .Count.
	PromptFlashcardsSystem = "flashcards_system"

	// PromptFlashcardsUser carries the material for flashcards. Fields: .Context, .Count.
	PromptFlashcardsUser = "flashcards_user"

	// PromptNotesSystem instructs note generation. Fields: .Style, .Instruction.
	PromptNotesSystem = "notes_system"

	// PromptNotesUser carries the material for notes. Fields: .Context, .Style.
	PromptNotesUser = "notes_user"
)

// AllPromptNames returns every well-known prompt name.
func AllPromptNames() []string {
	return []string{
		PromptRAGSystem,
		PromptRAGContext,
		PromptQuizSystem,
		PromptQuizUser,
		PromptFlashcardsSystem,
		PromptFlashcardsUser,
		PromptNotesSystem,
		PromptNotesUser,
	}
}
