package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

// mockIngestService records ingest requests.
type mockIngestService struct {
	mu       sync.Mutex
	requests []driving.IngestRequest
	err      error
}

func (m *mockIngestService) Ingest(_ context.Context, owner domain.OwnerID, req driving.IngestRequest) (*driving.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &driving.IngestResult{
		Document:   domain.Document{ID: "doc-" + req.FileName, OwnerID: owner, Label: req.FileName},
		ChunkCount: 1,
	}, nil
}

func (m *mockIngestService) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name    string
		dir     string
		owner   domain.OwnerID
		ingest  driving.IngestService
		wantErr error
	}{
		{"valid", dir, "alice", &mockIngestService{}, nil},
		{"missing owner", dir, "", &mockIngestService{}, domain.ErrMissingOwner},
		{"not a directory", file, "alice", &mockIngestService{}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(tt.dir, tt.owner, tt.ingest)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, w)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultDebounce, w.debounce)
		})
	}

	t.Run("missing directory", func(t *testing.T) {
		_, err := New(filepath.Join(dir, "nope"), "alice", &mockIngestService{})
		assert.Error(t, err)
	})

	t.Run("nil ingest service", func(t *testing.T) {
		_, err := New(dir, "alice", nil)
		assert.Error(t, err)
	})
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/tmp/lecture.pdf", true},
		{"/tmp/Lecture.PDF", true},
		{"/tmp/essay.docx", true},
		{"/tmp/notes.txt", true},
		{"/tmp/readme.md", true},
		{"/tmp/page.html", true},
		{"/tmp/image.png", false},
		{"/tmp/archive.zip", false},
		{"/tmp/.hidden.txt", false},
		{"/tmp/noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isSupported(tt.path))
		})
	}
}

func TestWatcher_HandleEvent(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		mkdir     bool
		create    bool
		op        fsnotify.Op
		scheduled bool
	}{
		{"create supported file", "notes.txt", false, true, fsnotify.Create, true},
		{"write supported file", "notes.md", false, true, fsnotify.Write, true},
		{"remove is ignored", "gone.txt", false, false, fsnotify.Remove, false},
		{"rename is ignored", "moved.txt", false, false, fsnotify.Rename, false},
		{"chmod is ignored", "notes.txt", false, true, fsnotify.Chmod, false},
		{"unsupported extension", "photo.jpg", false, true, fsnotify.Create, false},
		{"hidden file", ".draft.txt", false, true, fsnotify.Create, false},
		{"directory named like a file", "folder.md", true, false, fsnotify.Create, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if tt.mkdir {
				require.NoError(t, os.Mkdir(path, 0755))
			}
			if tt.create {
				require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
			}

			w, err := New(dir, "alice", &mockIngestService{}, WithDebounce(time.Hour))
			require.NoError(t, err)
			defer w.stopPending()

			got := w.handleEvent(context.Background(), fsnotify.Event{Name: path, Op: tt.op})
			assert.Equal(t, tt.scheduled, got)
		})
	}
}

func TestWatcher_IngestFile_SkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Photosynthesis converts light."), 0644))

	ingest := &mockIngestService{}
	var results []Result
	w, err := New(dir, "alice", ingest, WithResultHandler(func(r Result) { results = append(results, r) }))
	require.NoError(t, err)

	ctx := context.Background()
	w.ingestFile(ctx, path)
	w.ingestFile(ctx, path)
	assert.Equal(t, 1, ingest.count())

	require.NoError(t, os.WriteFile(path, []byte("Photosynthesis converts light into sugar."), 0644))
	w.ingestFile(ctx, path)
	assert.Equal(t, 2, ingest.count())

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "doc-notes.txt", results[0].Ingest.Document.ID)

	req := ingest.requests[0]
	assert.Equal(t, domain.SourceKindUpload, req.Kind)
	assert.Equal(t, "notes.txt", req.FileName)
}

func TestWatcher_IngestFile_FailureAllowsRetry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

	ingest := &mockIngestService{err: errors.New("embedding provider down")}
	var lastErr error
	w, err := New(dir, "alice", ingest, WithResultHandler(func(r Result) { lastErr = r.Err }))
	require.NoError(t, err)

	w.ingestFile(context.Background(), path)
	assert.Error(t, lastErr)

	ingest.err = nil
	w.ingestFile(context.Background(), path)
	assert.NoError(t, lastErr)
	assert.Equal(t, 2, ingest.count())
}

func TestWatcher_IngestFile_EmptyFileSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	ingest := &mockIngestService{}
	w, err := New(dir, "alice", ingest)
	require.NoError(t, err)

	w.ingestFile(context.Background(), path)
	assert.Equal(t, 0, ingest.count())
}

func TestWatcher_Run_IngestsNewFiles(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngestService{}

	w, err := New(dir, "alice", ingest, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "lecture.md"), []byte("# Cells\n\nCells are small."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("not text"), 0644))

	require.Eventually(t, func() bool { return ingest.count() == 1 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop")
	}

	assert.Equal(t, "lecture.md", ingest.requests[0].FileName)
}
