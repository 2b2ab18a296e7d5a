package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

// ==================== Documents ====================

// SaveDocument inserts or replaces a document. A document ID held by
// another owner is rejected.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := doc.OwnerID.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, label, kind, source_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			kind = excluded.kind,
			source_ref = excluded.source_ref
		WHERE documents.owner_id = excluded.owner_id
	`, doc.ID, string(doc.OwnerID), doc.Label, string(doc.Kind), doc.SourceRef, toUnix(doc.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, owner domain.OwnerID, id string) (*domain.Document, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, label, kind, source_ref, created_at
		FROM documents WHERE id = ? AND owner_id = ?
	`, id, string(owner))

	var doc domain.Document
	var createdAt int64
	if err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Label, &doc.Kind, &doc.SourceRef, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.CreatedAt = fromUnix(createdAt)
	return &doc, nil
}

// ListDocuments returns the owner's documents with artifact counts, newest first.
func (s *Store) ListDocuments(ctx context.Context, owner domain.OwnerID) ([]domain.DocumentSummary, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.owner_id, d.label, d.kind, d.source_ref, d.created_at,
			(SELECT COUNT(*) FROM chunks c WHERE c.document_id = d.id),
			(SELECT COUNT(*) FROM quizzes q WHERE q.document_id = d.id),
			(SELECT COUNT(*) FROM flashcard_sets f WHERE f.document_id = d.id),
			(SELECT COUNT(*) FROM notes n WHERE n.document_id = d.id)
		FROM documents d
		WHERE d.owner_id = ?
		ORDER BY d.created_at DESC, d.id ASC
	`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DocumentSummary, 0)
	for rows.Next() {
		var sum domain.DocumentSummary
		var createdAt int64
		if err := rows.Scan(&sum.ID, &sum.OwnerID, &sum.Label, &sum.Kind, &sum.SourceRef, &createdAt,
			&sum.ChunkCount, &sum.QuizCount, &sum.FlashcardCount, &sum.NoteCount); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		sum.CreatedAt = fromUnix(createdAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document. Chunks and artifacts go with it via
// ON DELETE CASCADE inside the same statement.
func (s *Store) DeleteDocument(ctx context.Context, owner domain.OwnerID, id string) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ? AND owner_id = ?", id, string(owner))
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return expectAffected(res)
}

// ==================== Chunks ====================

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

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ownsDocument(ctx, tx, owner, documentID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
			return fmt.Errorf("clearing chunks: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (id, document_id, chunk_index, start_offset, end_offset, text, model, dimensions, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing chunk insert: %w", err)
		}
		defer stmt.Close()

		for i, c := range chunks {
			id := c.ID
			if id == "" {
				id = uuid.NewString()
			}
			if _, err := stmt.ExecContext(ctx, id, documentID, c.Index, c.StartOffset, c.EndOffset, c.Text,
				model, dims, float32SliceToBytes(embeddings[i])); err != nil {
				return fmt.Errorf("inserting chunk %d: %w", c.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Retrieve ranks the owner's chunks by cosine distance to the query.
// Only chunks embedded by the query's model at the query's dimension are
// candidates.
func (s *Store) Retrieve(ctx context.Context, q domain.RetrievalQuery) ([]domain.RetrievedChunk, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := `
		SELECT c.id, c.document_id, c.chunk_index, c.start_offset, c.end_offset, c.text, c.embedding
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.owner_id = ? AND c.dimensions = ?`
	args := []any{string(q.OwnerID), len(q.Embedding)}
	if q.Model != "" {
		query += " AND c.model = ?"
		args = append(args, q.Model)
	}
	if q.DocumentID != "" {
		query += " AND c.document_id = ?"
		args = append(args, q.DocumentID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RetrievedChunk, 0)
	for rows.Next() {
		var rc domain.RetrievedChunk
		var blob []byte
		if err := rows.Scan(&rc.ID, &rc.DocumentID, &rc.Index, &rc.StartOffset, &rc.EndOffset, &rc.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		rc.Distance = domain.CosineDistance(q.Embedding, bytesToFloat32Slice(blob))
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	domain.SortRetrieved(out)
	if limit := q.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListDocumentChunks returns up to limit chunks in index order. limit <= 0 means all.
func (s *Store) ListDocumentChunks(ctx context.Context, owner domain.OwnerID, documentID string,
	limit int) ([]domain.TextChunk, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := ownsDocument(ctx, s.db, owner, documentID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, document_id, chunk_index, start_offset, end_offset, text
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_index ASC`
	args := []any{documentID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TextChunk, 0)
	for rows.Next() {
		var c domain.TextChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.StartOffset, &c.EndOffset, &c.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
