package fake

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/prompts"
)

const lesson = "Cells are the basic unit of life. The nucleus stores DNA. Mitochondria produce energy."

func render(t *testing.T, name string, data map[string]any) string {
	t.Helper()
	out, err := prompts.Load(nil, name, data)
	require.NoError(t, err)
	return out
}

func TestLLMService_Quiz(t *testing.T) {
	data := map[string]any{
		"Context": lesson, "Count": 5, "Difficulty": "medium",
		"DifficultyUpper": "MEDIUM", "Instruction": "",
	}
	msgs := []driven.ChatMessage{
		{Role: "system", Content: render(t, driven.PromptQuizSystem, data)},
		{Role: "user", Content: render(t, driven.PromptQuizUser, data)},
	}

	reply, err := NewLLMService("").Chat(context.Background(), msgs, driven.ChatOptions{JSON: true})
	require.NoError(t, err)

	var got struct {
		Questions []struct {
			Question     string   `json:"question"`
			Options      []string `json:"options"`
			CorrectIndex int      `json:"correctIndex"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal([]byte(reply), &got))
	require.Len(t, got.Questions, 5)
	for i, q := range got.Questions {
		assert.Len(t, q.Options, 4)
		assert.Equal(t, i%4, q.CorrectIndex)
	}
	assert.Equal(t, "Cells are the basic unit of life", got.Questions[0].Options[0])
	assert.Equal(t, "The nucleus stores DNA", got.Questions[1].Options[1])
}

func TestLLMService_Flashcards(t *testing.T) {
	data := map[string]any{"Context": lesson, "Count": 4}
	msgs := []driven.ChatMessage{
		{Role: "system", Content: render(t, driven.PromptFlashcardsSystem, data)},
		{Role: "user", Content: render(t, driven.PromptFlashcardsUser, data)},
	}

	reply, err := NewLLMService("").Chat(context.Background(), msgs, driven.ChatOptions{JSON: true})
	require.NoError(t, err)

	var got struct {
		Flashcards []struct{ Front, Back string } `json:"flashcards"`
	}
	require.NoError(t, json.Unmarshal([]byte(reply), &got))
	require.Len(t, got.Flashcards, 4)
	assert.Equal(t, "Key point 1", got.Flashcards[0].Front)
	assert.Equal(t, "Cells are the basic unit of life", got.Flashcards[3].Back)
}

func TestLLMService_Notes(t *testing.T) {
	data := map[string]any{"Context": lesson, "Style": "concise", "Instruction": ""}
	msgs := []driven.ChatMessage{
		{Role: "system", Content: render(t, driven.PromptNotesSystem, data)},
		{Role: "user", Content: render(t, driven.PromptNotesUser, data)},
	}

	reply, err := NewLLMService("").Chat(context.Background(), msgs, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Contains(t, reply, "# Study Notes")
	assert.Contains(t, reply, "- **Point 2:** The nucleus stores DNA")
}

func TestLLMService_Answer(t *testing.T) {
	svc := NewLLMService("custom")
	ctx := context.Background()

	reply, err := svc.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: "Context from the user's document(s):\n[1] Paris is the capital of France."},
		{Role: "user", Content: "What is the capital?"},
	}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Based on your material: Paris is the capital of France", reply)

	reply, err = svc.Chat(ctx, nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Contains(t, reply, "not sure")

	assert.Equal(t, "custom", svc.ModelName())
	assert.NoError(t, svc.Ping(ctx))
}

func TestLLMService_AnswerWithoutMaterial(t *testing.T) {
	data := map[string]any{}
	system := render(t, driven.PromptRAGSystem, data)

	reply, err := NewLLMService("").Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Can you summarise my notes on photosynthesis?"},
	}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Contains(t, reply, "not sure")
	assert.NotContains(t, reply, "Based on your material")
	assert.NotContains(t, reply, "# Study Notes")
}

func TestLLMService_QuestionMentioningNotesIsAnswered(t *testing.T) {
	reply, err := NewLLMService("").Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: render(t, driven.PromptRAGSystem, map[string]any{})},
		{Role: "system", Content: "Context from the user's document(s):\n[1] Chloroplasts capture light."},
		{Role: "user", Content: "What do my notes say about chloroplasts?"},
	}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Based on your material: Chloroplasts capture light", reply)
}

func TestLLMService_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLLMService("").Chat(ctx, nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
