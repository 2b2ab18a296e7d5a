package domain

import (
	"fmt"
	"strings"
)

// ChatRole tags a message in a conversation.
type ChatRole string

// Conversation roles.
const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// IsValid returns true if the role is recognised.
func (r ChatRole) IsValid() bool {
	switch r {
	case ChatRoleSystem, ChatRoleUser, ChatRoleAssistant:
		return true
	default:
		return false
	}
}

// ChatTurn is one role-tagged message of prior conversation.
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ValidateHistory rejects the first turn with an unknown role or blank
// content. Prior turns are replayed verbatim, so none may be dropped.
func ValidateHistory(turns []ChatTurn) error {
	for i, turn := range turns {
		if !turn.Role.IsValid() {
			return fmt.Errorf("%w: history turn %d has unknown role %q", ErrInvalidInput, i, turn.Role)
		}
		if strings.TrimSpace(turn.Content) == "" {
			return fmt.Errorf("%w: history turn %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}

// Answer is the result of a grounded question-answering request.
type Answer struct {
	// Text is the generated answer. It is never empty on success.
	Text string

	// UsedChunks are the chunks included in the prompt context, in the
	// order they were included. Empty when the answer was generated
	// without context.
	UsedChunks []RetrievedChunk
}

// Grounded reports whether the answer was generated with document context.
func (a Answer) Grounded() bool {
	return len(a.UsedChunks) > 0
}

// GenerationState tracks a single generation request.
type GenerationState string

// Generation states. A request moves BuildingPrompt -> AwaitingProvider
// and ends in Done or Failed.
const (
	GenerationBuildingPrompt   GenerationState = "BUILDING_PROMPT"
	GenerationAwaitingProvider GenerationState = "AWAITING_PROVIDER"
	GenerationDone             GenerationState = "DONE"
	GenerationFailed           GenerationState = "FAILED"
)

// IsTerminal reports whether no further transition is possible.
func (s GenerationState) IsTerminal() bool {
	return s == GenerationDone || s == GenerationFailed
}

// CanTransition reports whether moving from s to next is allowed.
func (s GenerationState) CanTransition(next GenerationState) bool {
	switch s {
	case GenerationBuildingPrompt:
		return next == GenerationAwaitingProvider || next == GenerationFailed
	case GenerationAwaitingProvider:
		return next == GenerationDone || next == GenerationFailed
	default:
		return false
	}
}
