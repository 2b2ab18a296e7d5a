package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		collection string
		expected   string
	}{
		{"valid document URI", "quizbolt://documents/doc-456", "documents/", "doc-456"},
		{"valid note URI", "quizbolt://notes/note-1", "notes/", "note-1"},
		{"invalid prefix", "file://documents/doc-456", "documents/", ""},
		{"wrong collection", "quizbolt://notes/doc-456", "documents/", ""},
		{"nested path", "quizbolt://documents/doc-1/chunks", "documents/", ""},
		{"empty URI", "", "documents/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractID(tt.uri, tt.collection))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns library", func(t *testing.T) {
		lib := &mockLibraryService{
			documents: []domain.DocumentSummary{
				{Document: domain.Document{ID: "doc-1", Label: "Biology 101", Kind: domain.SourceKindUpload}},
			},
		}
		server, err := NewServer(&Ports{Owner: "alice", RAG: &mockRAGService{}, Library: lib})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("quizbolt://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "Biology 101")
		assert.Contains(t, result.Contents[0].Text, "quizbolt://documents/doc-1")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		lib := &mockLibraryService{err: errors.New("database error")}
		server, err := NewServer(&Ports{Owner: "alice", RAG: &mockRAGService{}, Library: lib})
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("quizbolt://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleDocumentTextResource(t *testing.T) {
	ctx := context.Background()

	t.Run("joins chunks without overlap", func(t *testing.T) {
		lib := &mockLibraryService{
			chunks: []domain.TextChunk{
				{Index: 0, StartOffset: 0, EndOffset: 10, Text: "Cells are "},
				{Index: 1, StartOffset: 6, EndOffset: 20, Text: "are the units."},
			},
		}
		server, err := NewServer(&Ports{Owner: "alice", RAG: &mockRAGService{}, Library: lib})
		require.NoError(t, err)

		result, err := server.handleDocumentTextResource(ctx, makeReadResourceRequest("quizbolt://documents/doc-1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "Cells are the units.", result.Contents[0].Text)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Owner: "alice", RAG: &mockRAGService{}, Library: &mockLibraryService{}})
		require.NoError(t, err)

		_, err = server.handleDocumentTextResource(ctx, makeReadResourceRequest("quizbolt://invalid/uri"))

		require.Error(t, err)
	})

	t.Run("unknown document returns not found", func(t *testing.T) {
		lib := &mockLibraryService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Owner: "alice", RAG: &mockRAGService{}, Library: lib})
		require.NoError(t, err)

		_, err = server.handleDocumentTextResource(ctx, makeReadResourceRequest("quizbolt://documents/nope"))

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		lib := &mockLibraryService{err: errors.New("disk gone")}
		server, err := NewServer(&Ports{Owner: "alice", RAG: &mockRAGService{}, Library: lib})
		require.NoError(t, err)

		_, err = server.handleDocumentTextResource(ctx, makeReadResourceRequest("quizbolt://documents/doc-1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting document text")
	})
}

func TestServer_handleNoteResource(t *testing.T) {
	ctx := context.Background()

	study := &mockStudyService{note: &domain.Note{ID: "note-1", Content: "# Photosynthesis\n\n- light"}}
	server, err := NewServer(&Ports{Owner: "alice", RAG: &mockRAGService{}, Library: &mockLibraryService{}, Study: study})
	require.NoError(t, err)

	result, err := server.handleNoteResource(ctx, makeReadResourceRequest("quizbolt://notes/note-1"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "text/markdown", result.Contents[0].MIMEType)
	assert.Contains(t, result.Contents[0].Text, "# Photosynthesis")
}
