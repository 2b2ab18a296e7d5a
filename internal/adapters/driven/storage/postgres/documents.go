package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// SaveDocument inserts or replaces a document. A document ID held by
// another owner is rejected.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := doc.OwnerID.Validate(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, owner_id, label, kind, source_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			kind = EXCLUDED.kind,
			source_ref = EXCLUDED.source_ref
		WHERE documents.owner_id = EXCLUDED.owner_id
	`, doc.ID, string(doc.OwnerID), doc.Label, string(doc.Kind), doc.SourceRef, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, owner domain.OwnerID, id string) (*domain.Document, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	var doc domain.Document
	var ownerID, kind string
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, label, kind, source_ref, created_at
		FROM documents WHERE id = $1 AND owner_id = $2
	`, id, string(owner)).Scan(&doc.ID, &ownerID, &doc.Label, &kind, &doc.SourceRef, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	doc.OwnerID = domain.OwnerID(ownerID)
	doc.Kind = domain.SourceKind(kind)
	doc.CreatedAt = doc.CreatedAt.UTC()
	return &doc, nil
}

// ListDocuments returns the owner's documents with artifact counts, newest first.
func (s *Store) ListDocuments(ctx context.Context, owner domain.OwnerID) ([]domain.DocumentSummary, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT d.id, d.owner_id, d.label, d.kind, d.source_ref, d.created_at,
			(SELECT COUNT(*) FROM chunks c WHERE c.document_id = d.id),
			(SELECT COUNT(*) FROM quizzes q WHERE q.document_id = d.id),
			(SELECT COUNT(*) FROM flashcard_sets f WHERE f.document_id = d.id),
			(SELECT COUNT(*) FROM notes n WHERE n.document_id = d.id)
		FROM documents d
		WHERE d.owner_id = $1
		ORDER BY d.created_at DESC, d.id ASC
	`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DocumentSummary, 0)
	for rows.Next() {
		var sum domain.DocumentSummary
		var ownerID, kind string
		var chunks, quizzes, sets, notes int64
		if err := rows.Scan(&sum.ID, &ownerID, &sum.Label, &kind, &sum.SourceRef, &sum.CreatedAt,
			&chunks, &quizzes, &sets, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		sum.OwnerID = domain.OwnerID(ownerID)
		sum.Kind = domain.SourceKind(kind)
		sum.CreatedAt = sum.CreatedAt.UTC()
		sum.ChunkCount, sum.QuizCount = int(chunks), int(quizzes)
		sum.FlashcardCount, sum.NoteCount = int(sets), int(notes)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return out, nil
}

// DeleteDocument removes a document. Chunks and artifacts cascade in the
// same statement, so a concurrent retrieval sees all of them or none.
func (s *Store) DeleteDocument(ctx context.Context, owner domain.OwnerID, id string) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1 AND owner_id = $2", id, string(owner))
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return expectAffected(tag)
}

// StoreChunks replaces the document's chunks with the given chunks and embeddings.
func (s *Store) StoreChunks(ctx context.Context, owner domain.OwnerID, documentID, model string,
	chunks []domain.TextChunk, embeddings [][]float32) (int, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}
	dims, err := domain.ValidateEmbeddings(chunks, embeddings)
	if err != nil {
		return 0, err
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if err := ownsDocument(ctx, tx, owner, documentID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM chunks WHERE document_id = $1", documentID); err != nil {
			return fmt.Errorf("failed to clear chunks: %w", err)
		}
		for i, c := range chunks {
			id := c.ID
			if id == "" {
				id = uuid.NewString()
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO chunks (id, document_id, chunk_index, start_offset, end_offset, text, model, dimensions, embedding)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::vector)
			`, id, documentID, c.Index, c.StartOffset, c.EndOffset, c.Text, model, dims,
				vectorLiteral(embeddings[i])); err != nil {
				return fmt.Errorf("failed to insert chunk %d: %w", c.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Retrieve ranks the owner's chunks by pgvector cosine distance.
// Only chunks embedded by the query's model at the query's dimension are
// candidates.
func (s *Store) Retrieve(ctx context.Context, q domain.RetrievalQuery) ([]domain.RetrievedChunk, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := `
		SELECT c.id, c.document_id, c.chunk_index, c.start_offset, c.end_offset, c.text,
			COALESCE(NULLIF(c.embedding <=> $1::vector, 'NaN'::float8), 2) AS distance
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.owner_id = $2 AND c.dimensions = $3`
	args := []any{vectorLiteral(q.Embedding), string(q.OwnerID), len(q.Embedding)}
	if q.Model != "" {
		args = append(args, q.Model)
		query += fmt.Sprintf(" AND c.model = $%d", len(args))
	}
	if q.DocumentID != "" {
		args = append(args, q.DocumentID)
		query += fmt.Sprintf(" AND c.document_id = $%d", len(args))
	}
	args = append(args, q.EffectiveLimit())
	query += fmt.Sprintf(" ORDER BY distance ASC, c.chunk_index ASC, c.document_id ASC, c.id ASC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RetrievedChunk, 0)
	for rows.Next() {
		var rc domain.RetrievedChunk
		if err := rows.Scan(&rc.ID, &rc.DocumentID, &rc.Index, &rc.StartOffset, &rc.EndOffset, &rc.Text,
			&rc.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		if math.IsNaN(rc.Distance) {
			rc.Distance = domain.MaxDistance
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunk rows: %w", err)
	}
	domain.SortRetrieved(out)
	return out, nil
}

// ListDocumentChunks returns up to limit chunks in index order. limit <= 0 means all.
func (s *Store) ListDocumentChunks(ctx context.Context, owner domain.OwnerID, documentID string,
	limit int) ([]domain.TextChunk, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := ownsDocument(ctx, s.pool, owner, documentID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, document_id, chunk_index, start_offset, end_offset, text
		FROM chunks WHERE document_id = $1
		ORDER BY chunk_index ASC`
	args := []any{documentID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TextChunk, 0)
	for rows.Next() {
		var c domain.TextChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.StartOffset, &c.EndOffset, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunk rows: %w", err)
	}
	return out, nil
}
