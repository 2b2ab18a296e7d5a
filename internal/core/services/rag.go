package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
	"github.com/quizbolt/quizbolt/internal/logger"
	"github.com/quizbolt/quizbolt/internal/prompts"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// RAGService answers questions grounded in the owner's documents.
type RAGService struct {
	embedder     driven.EmbeddingService
	chunks       driven.ChunkStore
	llm          driven.LLMService
	prompts      driven.PromptStore
	metrics      driven.Metrics
	limit        int
	contextChars int
}

// NewRAGService creates a new RAG service.
// prompts and metrics are optional (can be nil).
func NewRAGService(
	embedder driven.EmbeddingService,
	chunks driven.ChunkStore,
	llm driven.LLMService,
	promptStore driven.PromptStore,
	metrics driven.Metrics,
	rag domain.RAGSettings,
) *RAGService {
	return &RAGService{
		embedder:     embedder,
		chunks:       chunks,
		llm:          llm,
		prompts:      promptStore,
		metrics:      metrics,
		limit:        rag.RetrievalLimit,
		contextChars: rag.ContextChars,
	}
}

// Retrieve embeds the query and returns the owner's nearest chunks.
func (s *RAGService) Retrieve(ctx context.Context, owner domain.OwnerID,
	req driving.RetrieveRequest) ([]domain.RetrievedChunk, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.limit
	}

	logger.Section("Retrieval")
	logger.Debug("Query: %q, document: %q, limit: %d", query, req.DocumentID, limit)

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.chunks.Retrieve(ctx, domain.RetrievalQuery{
		Embedding:  vec,
		Model:      s.embedder.ModelName(),
		OwnerID:    owner,
		DocumentID: req.DocumentID,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}

	logger.Debug("Retrieved %d chunks", len(results))
	if s.metrics != nil {
		s.metrics.ChunksRetrieved(len(results))
	}
	return results, nil
}

// Answer retrieves context and asks the LLM for a grounded reply.
// Without usable context it still answers, flagged by an empty UsedChunks.
func (s *RAGService) Answer(ctx context.Context, owner domain.OwnerID, req driving.AnswerRequest) (*domain.Answer, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if err := domain.ValidateHistory(req.History); err != nil {
		return nil, err
	}

	chunks, err := s.Retrieve(ctx, owner, driving.RetrieveRequest{Query: query, DocumentID: req.DocumentID})
	if err != nil {
		return nil, err
	}
	built := BuildContext(chunks, s.contextChars)
	if built.IsEmpty() {
		logger.Warn("No usable context for query; answering ungrounded")
	}

	gen := startGeneration(taskAnswer, s.metrics)
	msgs, err := s.answerMessages(built, req.History, query)
	if err != nil {
		return nil, gen.fail(err)
	}

	reply, err := gen.call(ctx, s.llm, msgs, driven.ChatOptions{})
	if err != nil {
		return nil, err
	}
	gen.done()

	return &domain.Answer{Text: strings.TrimSpace(reply), UsedChunks: built.ChunksUsed}, nil
}

// answerMessages orders the conversation: grounding instruction, context
// (when present), prior turns, then the question.
func (s *RAGService) answerMessages(built domain.BuiltContext, history []domain.ChatTurn,
	query string) ([]driven.ChatMessage, error) {
	system, err := prompts.Load(s.prompts, driven.PromptRAGSystem, nil)
	if err != nil {
		return nil, err
	}
	msgs := make([]driven.ChatMessage, 0, len(history)+3)
	msgs = append(msgs, driven.ChatMessage{Role: string(domain.ChatRoleSystem), Content: system})

	if !built.IsEmpty() {
		ctxMsg, err := prompts.Load(s.prompts, driven.PromptRAGContext, map[string]any{"Context": built.Context})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, driven.ChatMessage{Role: string(domain.ChatRoleSystem), Content: ctxMsg})
	}

	for _, turn := range history {
		msgs = append(msgs, driven.ChatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	msgs = append(msgs, driven.ChatMessage{Role: string(domain.ChatRoleUser), Content: query})
	return msgs, nil
}
