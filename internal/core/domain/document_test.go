package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceKind_DefaultLabel(t *testing.T) {
	tests := []struct {
		name string
		kind SourceKind
		ref  string
		want string
	}{
		{name: "text", kind: SourceKindText, ref: "", want: "Pasted text"},
		{name: "text ignores ref", kind: SourceKindText, ref: "x", want: "Pasted text"},
		{name: "url uses url", kind: SourceKindURL, ref: "https://example.com", want: "https://example.com"},
		{name: "upload uses file name", kind: SourceKindUpload, ref: "bio.pdf", want: "bio.pdf"},
		{name: "upload without name", kind: SourceKindUpload, ref: "", want: "Uploaded PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.DefaultLabel(tt.ref))
		})
	}
}

func TestSourceKind_IsValid(t *testing.T) {
	assert.True(t, SourceKindUpload.IsValid())
	assert.True(t, SourceKindURL.IsValid())
	assert.True(t, SourceKindText.IsValid())
	assert.False(t, SourceKind("email").IsValid())
}

func TestOwnerID_Validate(t *testing.T) {
	assert.ErrorIs(t, OwnerID("").Validate(), ErrMissingOwner)
	assert.ErrorIs(t, OwnerID("   ").Validate(), ErrMissingOwner)
	assert.NoError(t, OwnerID("user-1").Validate())
	assert.Equal(t, "user-1", OwnerID("user-1").String())
}

func TestRetrievalQuery(t *testing.T) {
	q := RetrievalQuery{OwnerID: "u", Embedding: []float32{1}}
	assert.NoError(t, q.Validate())
	assert.Equal(t, DefaultRetrievalLimit, q.EffectiveLimit())

	q.Limit = 3
	assert.Equal(t, 3, q.EffectiveLimit())

	q.OwnerID = ""
	assert.ErrorIs(t, q.Validate(), ErrMissingOwner)

	q = RetrievalQuery{OwnerID: "u"}
	assert.ErrorIs(t, q.Validate(), ErrInvalidInput)
}

func TestTextChunk_Len(t *testing.T) {
	c := TextChunk{StartOffset: 10, EndOffset: 25}
	assert.Equal(t, 15, c.Len())
}

func TestBuiltContext_IsEmpty(t *testing.T) {
	assert.True(t, BuiltContext{}.IsEmpty())
	assert.False(t, BuiltContext{ChunksUsed: []RetrievedChunk{{}}}.IsEmpty())
}

func TestGenerationState_Transitions(t *testing.T) {
	assert.True(t, GenerationBuildingPrompt.CanTransition(GenerationAwaitingProvider))
	assert.True(t, GenerationBuildingPrompt.CanTransition(GenerationFailed))
	assert.False(t, GenerationBuildingPrompt.CanTransition(GenerationDone))
	assert.True(t, GenerationAwaitingProvider.CanTransition(GenerationDone))
	assert.True(t, GenerationAwaitingProvider.CanTransition(GenerationFailed))
	assert.False(t, GenerationDone.CanTransition(GenerationFailed))
	assert.True(t, GenerationDone.IsTerminal())
	assert.True(t, GenerationFailed.IsTerminal())
	assert.False(t, GenerationAwaitingProvider.IsTerminal())
}

func TestChatRole_IsValid(t *testing.T) {
	assert.True(t, ChatRoleUser.IsValid())
	assert.True(t, ChatRoleAssistant.IsValid())
	assert.True(t, ChatRoleSystem.IsValid())
	assert.False(t, ChatRole("tool").IsValid())
}

func TestValidateHistory(t *testing.T) {
	assert.NoError(t, ValidateHistory(nil))
	assert.NoError(t, ValidateHistory([]ChatTurn{
		{Role: ChatRoleUser, Content: "What is ATP?"},
		{Role: ChatRoleAssistant, Content: "Energy currency."},
	}))

	err := ValidateHistory([]ChatTurn{{Role: ChatRoleUser, Content: "a"}, {Role: "tool", Content: "b"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "turn 1")

	assert.ErrorIs(t, ValidateHistory([]ChatTurn{{Role: ChatRoleUser, Content: "\n\t"}}), ErrInvalidInput)
}

func TestAnswer_Grounded(t *testing.T) {
	assert.False(t, Answer{Text: "x"}.Grounded())
	assert.True(t, Answer{Text: "x", UsedChunks: []RetrievedChunk{{}}}.Grounded())
}

func TestJoinChunks(t *testing.T) {
	tests := []struct {
		name   string
		chunks []TextChunk
		want   string
	}{
		{"empty", nil, ""},
		{"single", []TextChunk{{StartOffset: 0, EndOffset: 5, Text: "hello"}}, "hello"},
		{
			"overlap removed",
			[]TextChunk{
				{Index: 0, StartOffset: 0, EndOffset: 8, Text: "abcdefgh"},
				{Index: 1, StartOffset: 5, EndOffset: 11, Text: "fghijk"},
			},
			"abcdefghijk",
		},
		{
			"multibyte offsets",
			[]TextChunk{
				{Index: 0, StartOffset: 0, EndOffset: 4, Text: "éèàü"},
				{Index: 1, StartOffset: 2, EndOffset: 6, Text: "àüöß"},
			},
			"éèàüöß",
		},
		{
			"contained chunk skipped",
			[]TextChunk{
				{Index: 0, StartOffset: 0, EndOffset: 6, Text: "abcdef"},
				{Index: 1, StartOffset: 2, EndOffset: 4, Text: "cd"},
			},
			"abcdef",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinChunks(tt.chunks))
		})
	}
}
