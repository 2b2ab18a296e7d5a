package driving

import (
	"context"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// RAGService answers questions grounded in the owner's documents.
type RAGService interface {
	// Retrieve embeds the query and returns the nearest chunks.
	Retrieve(ctx context.Context, owner domain.OwnerID, req RetrieveRequest) ([]domain.RetrievedChunk, error)

	// Answer runs the full retrieve, build context, generate flow.
	// With no usable context it still answers from the grounding
	// instruction alone and returns no used chunks.
	Answer(ctx context.Context, owner domain.OwnerID, req AnswerRequest) (*domain.Answer, error)
}

// RetrieveRequest describes a similarity lookup.
type RetrieveRequest struct {
	Query      string
	DocumentID string
	Limit      int
}

// AnswerRequest describes a question.
type AnswerRequest struct {
	Query      string
	DocumentID string
	History    []domain.ChatTurn
}
