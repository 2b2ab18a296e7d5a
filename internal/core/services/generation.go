package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// Generation task names used in logs and metrics.
const (
	taskAnswer     = "answer"
	taskQuiz       = "quiz"
	taskFlashcards = "flashcards"
	taskNotes      = "notes"
)

// generation tracks one request through
// BUILDING_PROMPT -> AWAITING_PROVIDER -> DONE | FAILED.
type generation struct {
	task    string
	state   domain.GenerationState
	metrics driven.Metrics
	started time.Time
}

func startGeneration(task string, metrics driven.Metrics) *generation {
	g := &generation{task: task, state: domain.GenerationBuildingPrompt, metrics: metrics}
	logger.Debug("generation %s: %s", task, g.state)
	if metrics != nil {
		metrics.GenerationTransition(task, g.state)
	}
	return g
}

// State returns the current state.
func (g *generation) State() domain.GenerationState {
	return g.state
}

func (g *generation) transition(next domain.GenerationState) {
	if !g.state.CanTransition(next) {
		logger.Warn("generation %s: ignoring transition %s -> %s", g.task, g.state, next)
		return
	}
	logger.Debug("generation %s: %s -> %s", g.task, g.state, next)
	g.state = next
	if g.metrics != nil {
		g.metrics.GenerationTransition(g.task, next)
	}
}

// fail moves to FAILED and returns err for convenient chaining.
func (g *generation) fail(err error) error {
	g.transition(domain.GenerationFailed)
	return err
}

// call sends messages to the provider and records the round trip.
// An empty reply is ErrEmptyResponse.
func (g *generation) call(ctx context.Context, llm driven.LLMService, msgs []driven.ChatMessage,
	opts driven.ChatOptions) (string, error) {
	g.transition(domain.GenerationAwaitingProvider)
	g.started = time.Now()

	reply, err := llm.Chat(ctx, msgs, opts)
	if g.metrics != nil {
		g.metrics.GenerationDuration(g.task, time.Since(g.started))
	}
	if err != nil {
		return "", g.fail(fmt.Errorf("%s generation: %w", g.task, err))
	}
	if strings.TrimSpace(reply) == "" {
		return "", g.fail(fmt.Errorf("%s generation: %w", g.task, domain.ErrEmptyResponse))
	}
	return reply, nil
}

func (g *generation) done() {
	g.transition(domain.GenerationDone)
}
