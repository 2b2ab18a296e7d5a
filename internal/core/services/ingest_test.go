package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbolt/quizbolt/internal/adapters/driven/storage/memory"
	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
	"github.com/quizbolt/quizbolt/internal/postprocessors"
)

type ingestFixture struct {
	store    *memory.Store
	registry *mockRegistry
	embedder *mockEmbedder
	metrics  *recordingMetrics
}

func newIngest(t *testing.T, f *ingestFixture, fetcher driven.URLFetcher, chunks driven.ChunkStore,
	rag domain.RAGSettings) *IngestService {
	t.Helper()
	if f.store == nil {
		f.store = memory.NewStore()
	}
	if f.registry == nil {
		f.registry = &mockRegistry{}
	}
	if f.embedder == nil {
		f.embedder = &mockEmbedder{}
	}
	if f.metrics == nil {
		f.metrics = &recordingMetrics{}
	}
	if chunks == nil {
		chunks = f.store
	}
	pipeline, err := postprocessors.NewDefaultPipeline(rag)
	require.NoError(t, err)
	return NewIngestService(f.registry, pipeline, fetcher, f.embedder, f.store, chunks, f.metrics, rag.EmbedBatchSize)
}

func defaultRAG() domain.RAGSettings {
	return domain.DefaultAppSettings().RAG
}

func TestIngestService_Text(t *testing.T) {
	f := &ingestFixture{}
	svc := newIngest(t, f, nil, nil, defaultRAG())
	ctx := context.Background()

	res, err := svc.Ingest(ctx, owner, driving.IngestRequest{
		Kind: domain.SourceKindText,
		Text: "Page 3\n\nHello   world.\n\n\n\nBye.",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.ChunkCount)
	assert.Equal(t, "Pasted text", res.Document.Label)
	assert.Equal(t, owner, res.Document.OwnerID)
	assert.NotEmpty(t, res.Document.ID)

	chunks, err := f.store.ListDocumentChunks(ctx, owner, res.Document.ID, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello world. Bye.", chunks[0].Text)
	assert.Equal(t, 1, f.metrics.ingested[domain.SourceKindText])
}

func TestIngestService_CustomLabelIsTrimmed(t *testing.T) {
	f := &ingestFixture{}
	svc := newIngest(t, f, nil, nil, defaultRAG())

	res, err := svc.Ingest(context.Background(), owner, driving.IngestRequest{
		Kind:  domain.SourceKindText,
		Label: "  Biology week 1 ",
		Text:  "Cells divide.",
	})

	require.NoError(t, err)
	assert.Equal(t, "Biology week 1", res.Document.Label)
}

func TestIngestService_NoContent(t *testing.T) {
	tests := []struct {
		name string
		req  driving.IngestRequest
	}{
		{"blank text", driving.IngestRequest{Kind: domain.SourceKindText, Text: "  \n\t"}},
		{"only page markers", driving.IngestRequest{Kind: domain.SourceKindText, Text: "Page 1\n42\n\npage 2"}},
		{"empty upload", driving.IngestRequest{Kind: domain.SourceKindUpload, FileName: "a.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &ingestFixture{}
			svc := newIngest(t, f, nil, nil, defaultRAG())

			_, err := svc.Ingest(context.Background(), owner, tt.req)

			assert.ErrorIs(t, err, domain.ErrNoContent)
			assert.Zero(t, f.embedder.calls, "no provider call without content")
			docs, err := f.store.ListDocuments(context.Background(), owner)
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}
}

func TestIngestService_ExtractedTextEmpty(t *testing.T) {
	f := &ingestFixture{registry: &mockRegistry{text: "   "}}
	svc := newIngest(t, f, nil, nil, defaultRAG())

	_, err := svc.Ingest(context.Background(), owner, driving.IngestRequest{
		Kind: domain.SourceKindUpload, FileName: "scan.pdf", Content: []byte("%PDF-1.4"),
	})

	assert.ErrorIs(t, err, domain.ErrNoContent)
	assert.Zero(t, f.embedder.calls)
}

func TestIngestService_Validation(t *testing.T) {
	svc := newIngest(t, &ingestFixture{}, nil, nil, defaultRAG())
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "", driving.IngestRequest{Kind: domain.SourceKindText, Text: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingOwner)

	_, err = svc.Ingest(ctx, owner, driving.IngestRequest{Kind: "carrier-pigeon"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedSource)

	_, err = svc.Ingest(ctx, owner, driving.IngestRequest{Kind: domain.SourceKindURL, URL: "https://example.com"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedSource, "no fetcher configured")
}

func TestIngestService_URL(t *testing.T) {
	f := &ingestFixture{registry: &mockRegistry{text: "Mitochondria produce energy."}}
	fetcher := &mockFetcher{doc: &domain.RawDocument{MIMEType: "text/html", Content: []byte("<p>x</p>")}}
	svc := newIngest(t, f, fetcher, nil, defaultRAG())

	res, err := svc.Ingest(context.Background(), owner, driving.IngestRequest{
		Kind: domain.SourceKindURL, URL: "https://example.com/cells",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cells", res.Document.Label)
	assert.Equal(t, "https://example.com/cells", res.Document.SourceRef)
	require.Len(t, f.registry.seen, 1)
	assert.Equal(t, "text/html", f.registry.seen[0].MIMEType)
}

func TestIngestService_FetchError(t *testing.T) {
	fetchErr := errors.New("connection refused")
	svc := newIngest(t, &ingestFixture{}, &mockFetcher{err: fetchErr}, nil, defaultRAG())

	_, err := svc.Ingest(context.Background(), owner, driving.IngestRequest{
		Kind: domain.SourceKindURL, URL: "https://example.com",
	})

	assert.ErrorIs(t, err, fetchErr)
}

func TestIngestService_UploadDefaultsAndMIME(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		wantMIME  string
		wantLabel string
	}{
		{"pdf", "lecture.pdf", "application/pdf", "lecture.pdf"},
		{"markdown", "notes.md", "text/markdown", "notes.md"},
		{"no name", "", "application/octet-stream", "Uploaded PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &ingestFixture{registry: &mockRegistry{text: "Some study text."}}
			svc := newIngest(t, f, nil, nil, defaultRAG())

			res, err := svc.Ingest(context.Background(), owner, driving.IngestRequest{
				Kind: domain.SourceKindUpload, FileName: tt.fileName, Content: []byte("bytes"),
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, res.Document.Label)
			require.Len(t, f.registry.seen, 1)
			assert.Equal(t, tt.wantMIME, f.registry.seen[0].MIMEType)
		})
	}
}

func TestIngestService_UnsupportedFormat(t *testing.T) {
	f := &ingestFixture{registry: &mockRegistry{err: domain.ErrUnsupportedSource}}
	svc := newIngest(t, f, nil, nil, defaultRAG())

	_, err := svc.Ingest(context.Background(), owner, driving.IngestRequest{
		Kind: domain.SourceKindUpload, FileName: "photo.png", Content: []byte{0x89},
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedSource)
}

func TestIngestService_EmbedsInBatches(t *testing.T) {
	rag := defaultRAG()
	rag.ChunkSize = 40
	rag.ChunkOverlap = 0
	rag.EmbedBatchSize = 2
	f := &ingestFixture{}
	svc := newIngest(t, f, nil, nil, rag)

	text := strings.Repeat("Plants convert light into sugar. ", 10)
	res, err := svc.Ingest(context.Background(), owner, driving.IngestRequest{Kind: domain.SourceKindText, Text: text})

	require.NoError(t, err)
	require.Greater(t, res.ChunkCount, 2)
	total := 0
	for _, n := range f.embedder.batchSize {
		assert.LessOrEqual(t, n, 2)
		total += n
	}
	assert.Equal(t, res.ChunkCount, total)
}

func TestIngestService_EmbeddingMismatchStoresNothing(t *testing.T) {
	f := &ingestFixture{embedder: &mockEmbedder{short: true}}
	svc := newIngest(t, f, nil, nil, defaultRAG())

	_, err := svc.Ingest(context.Background(), owner, driving.IngestRequest{Kind: domain.SourceKindText, Text: "One."})

	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)
	docs, err := f.store.ListDocuments(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngestService_RollsBackOnChunkStoreFailure(t *testing.T) {
	f := &ingestFixture{store: memory.NewStore()}
	storeErr := errors.New("disk full")
	svc := newIngest(t, f, nil, &failingChunkStore{ChunkStore: f.store, err: storeErr}, defaultRAG())

	_, err := svc.Ingest(context.Background(), owner, driving.IngestRequest{Kind: domain.SourceKindText, Text: "One."})

	assert.ErrorIs(t, err, storeErr)
	docs, err := f.store.ListDocuments(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, docs, "document must be removed when chunks fail to store")
	assert.Empty(t, f.metrics.ingested)
}

func TestGuessMIMEType(t *testing.T) {
	assert.Equal(t, "application/pdf", guessMIMEType("A.PDF"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", guessMIMEType("essay.docx"))
	assert.Equal(t, "text/markdown", guessMIMEType("x.markdown"))
	assert.Equal(t, "application/octet-stream", guessMIMEType("blob"))
}
