package services

import (
	"context"
	"sync"
	"time"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Texts listed in vectors get that vector; everything else gets def.
type mockEmbedder struct {
	vectors   map[string][]float32
	def       []float32
	err       error
	short     bool // EmbedBatch drops the last vector
	model     string
	batchSize []int
	calls     int
}

func (m *mockEmbedder) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	if m.def != nil {
		return m.def
	}
	return []float32{1, 0, 0}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	m.batchSize = append(m.batchSize, len(texts))
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return len(m.vector("")) }

func (m *mockEmbedder) ModelName() string {
	if m.model == "" {
		return "mock-embed"
	}
	return m.model
}

func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService for testing.
// Replies are returned in order; the last one repeats.
type mockLLM struct {
	mu       sync.Mutex
	replies  []string
	err      error
	messages [][]driven.ChatMessage
	options  []driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, msgs []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msgs)
	m.options = append(m.options, opts)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", nil
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

func (m *mockLLM) lastMessages() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

func (m *mockLLM) ModelName() string             { return "mock-chat" }
func (m *mockLLM) Ping(_ context.Context) error { return m.err }
func (m *mockLLM) Close() error                 { return nil }

// recordingMetrics implements driven.Metrics for testing.
type recordingMetrics struct {
	mu          sync.Mutex
	ingested    map[domain.SourceKind]int
	retrieved   []int
	transitions map[string][]domain.GenerationState
	durations   int
}

func (m *recordingMetrics) DocumentIngested(kind domain.SourceKind, chunks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ingested == nil {
		m.ingested = make(map[domain.SourceKind]int)
	}
	m.ingested[kind] += chunks
}

func (m *recordingMetrics) ChunksRetrieved(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrieved = append(m.retrieved, n)
}

func (m *recordingMetrics) GenerationTransition(task string, state domain.GenerationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transitions == nil {
		m.transitions = make(map[string][]domain.GenerationState)
	}
	m.transitions[task] = append(m.transitions[task], state)
}

func (m *recordingMetrics) GenerationDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *recordingMetrics) states(task string) []domain.GenerationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GenerationState(nil), m.transitions[task]...)
}

// mockRegistry implements driven.NormaliserRegistry for testing.
type mockRegistry struct {
	text string
	err  error
	seen []*domain.RawDocument
}

func (m *mockRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	m.seen = append(m.seen, raw)
	if m.err != nil {
		return nil, m.err
	}
	return &driven.NormaliseResult{Text: m.text, Format: "mock"}, nil
}

func (m *mockRegistry) Register(_ driven.Normaliser)  {}
func (m *mockRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockFetcher implements driven.URLFetcher for testing.
type mockFetcher struct {
	doc *domain.RawDocument
	err error
}

func (m *mockFetcher) Fetch(_ context.Context, rawURL string) (*domain.RawDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc := *m.doc
	doc.URI = rawURL
	return &doc, nil
}

// failingChunkStore wraps a ChunkStore and fails StoreChunks.
type failingChunkStore struct {
	driven.ChunkStore
	err error
}

func (f *failingChunkStore) StoreChunks(_ context.Context, _ domain.OwnerID, _, _ string,
	_ []domain.TextChunk, _ [][]float32) (int, error) {
	return 0, f.err
}
