package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService extracts, chunks, embeds and stores documents.
type IngestService struct {
	registry  driven.NormaliserRegistry
	pipeline  driven.PostProcessorPipeline
	fetcher   driven.URLFetcher
	embedder  driven.EmbeddingService
	docs      driven.DocumentStore
	chunks    driven.ChunkStore
	metrics   driven.Metrics
	batchSize int
}

// NewIngestService creates a new ingest service.
// fetcher and metrics are optional (can be nil). Without a fetcher,
// URL sources are rejected with domain.ErrUnsupportedSource.
func NewIngestService(
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	fetcher driven.URLFetcher,
	embedder driven.EmbeddingService,
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	metrics driven.Metrics,
	batchSize int,
) *IngestService {
	if batchSize <= 0 {
		batchSize = domain.DefaultEmbedBatchSize
	}
	return &IngestService{
		registry:  registry,
		pipeline:  pipeline,
		fetcher:   fetcher,
		embedder:  embedder,
		docs:      docs,
		chunks:    chunks,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// Ingest runs extract, clean, chunk and embed, then stores the document
// and its chunks. Provider calls only happen once there is text to embed.
func (s *IngestService) Ingest(ctx context.Context, owner domain.OwnerID,
	req driving.IngestRequest) (*driving.IngestResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Ingest")
	text, ref, err := s.extract(ctx, req)
	if err != nil {
		return nil, err
	}

	doc := domain.Document{
		ID:        uuid.New().String(),
		OwnerID:   owner,
		Label:     strings.TrimSpace(req.Label),
		Kind:      req.Kind,
		SourceRef: ref,
		CreatedAt: time.Now().UTC(),
	}
	if doc.Label == "" {
		doc.Label = req.Kind.DefaultLabel(ref)
	}

	chunks, err := s.pipeline.Process(ctx, &domain.SourceText{DocumentID: doc.ID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("process text: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNoContent
	}
	logger.Debug("Document %q produced %d chunks", doc.Label, len(chunks))

	embeddings, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	if err := s.docs.SaveDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	stored, err := s.chunks.StoreChunks(ctx, owner, doc.ID, s.embedder.ModelName(), chunks, embeddings)
	if err != nil {
		// Leave nothing half-ingested behind.
		if delErr := s.docs.DeleteDocument(ctx, owner, doc.ID); delErr != nil {
			logger.Error("Failed to roll back document %s: %v", doc.ID, delErr)
		}
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	logger.Info("Ingested %s document %q (%d chunks)", doc.Kind, doc.Label, stored)
	if s.metrics != nil {
		s.metrics.DocumentIngested(doc.Kind, stored)
	}
	return &driving.IngestResult{Document: doc, ChunkCount: stored}, nil
}

// extract turns the request into raw text and a source reference.
func (s *IngestService) extract(ctx context.Context, req driving.IngestRequest) (text, ref string, err error) {
	switch req.Kind {
	case domain.SourceKindText:
		if strings.TrimSpace(req.Text) == "" {
			return "", "", domain.ErrNoContent
		}
		return req.Text, "", nil

	case domain.SourceKindURL:
		if s.fetcher == nil {
			return "", "", fmt.Errorf("%w: url ingestion is not configured", domain.ErrUnsupportedSource)
		}
		raw, err := s.fetcher.Fetch(ctx, req.URL)
		if err != nil {
			return "", "", fmt.Errorf("fetch %s: %w", req.URL, err)
		}
		text, err := s.normalise(ctx, raw)
		return text, req.URL, err

	case domain.SourceKindUpload:
		if len(req.Content) == 0 {
			return "", "", domain.ErrNoContent
		}
		mimeType := req.MIMEType
		if mimeType == "" {
			mimeType = guessMIMEType(req.FileName)
		}
		text, err := s.normalise(ctx, &domain.RawDocument{
			URI:      req.FileName,
			MIMEType: mimeType,
			Content:  req.Content,
		})
		return text, req.FileName, err

	default:
		return "", "", fmt.Errorf("%w: kind %q", domain.ErrUnsupportedSource, req.Kind)
	}
}

func (s *IngestService) normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	res, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedSource) {
			return "", err
		}
		return "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return "", domain.ErrNoContent
	}
	logger.Debug("Extracted %d bytes of %s text from %s", len(res.Text), res.Format, raw.URI)
	return res.Text, nil
}

// embed embeds chunk texts in batches and checks one vector came back per chunk.
func (s *IngestService) embed(ctx context.Context, chunks []domain.TextChunk) ([][]float32, error) {
	out := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		vecs, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d chunks",
				domain.ErrEmbeddingMismatch, len(vecs), len(texts))
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// guessMIMEType is a fallback for callers that did not detect the type themselves.
func guessMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
