// Package watch ingests study material dropped into a directory.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// supportedExtensions lists the file types the watcher ingests.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
	".html": true,
}

// Result reports the outcome of ingesting one file.
type Result struct {
	Path   string
	Ingest *driving.IngestResult
	Err    error
}

// Watcher ingests supported files created or rewritten in a directory.
// Each distinct file content is ingested once per Watcher.
type Watcher struct {
	dir      string
	owner    domain.OwnerID
	ingest   driving.IngestService
	debounce time.Duration
	onResult func(Result)

	mu      sync.Mutex
	pending map[string]*time.Timer
	seen    map[string]string // path -> content hash
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithResultHandler registers a callback invoked after every ingestion attempt.
func WithResultHandler(fn func(Result)) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// New creates a watcher for dir that ingests as owner.
func New(dir string, owner domain.OwnerID, ingest driving.IngestService, opts ...Option) (*Watcher, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if ingest == nil {
		return nil, errors.New("watch: ingest service is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory: %w", dir, domain.ErrInvalidInput)
	}

	w := &Watcher{
		dir:      dir,
		owner:    owner,
		ingest:   ingest,
		debounce: DefaultDebounce,
		onResult: func(Result) {},
		pending:  make(map[string]*time.Timer),
		seen:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches the directory until ctx is cancelled. Pending ingestions are
// cancelled with the context and waited for before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for new documents", w.dir)

	defer w.wait()
	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// handleEvent schedules an ingestion for create and write events on
// supported, visible files. It reports whether one was scheduled.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if !isSupported(event.Name) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return false
	}

	logger.Debug("watch event %s", event)
	w.schedule(ctx, event.Name)
	return true
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingestFile(ctx, path)
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

func (w *Watcher) wait() {
	w.wg.Wait()
}

// ingestFile uploads the file unless identical content was already ingested.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		w.onResult(Result{Path: path, Err: fmt.Errorf("failed to read file: %w", err)})
		return
	}
	if len(content) == 0 {
		return
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	w.mu.Lock()
	if w.seen[path] == hash {
		w.mu.Unlock()
		logger.Debug("skipping unchanged %s", path)
		return
	}
	w.seen[path] = hash
	w.mu.Unlock()

	res, err := w.ingest.Ingest(ctx, w.owner, driving.IngestRequest{
		Kind:     domain.SourceKindUpload,
		FileName: filepath.Base(path),
		Content:  content,
	})
	if err != nil {
		// Allow a retry when the file is written again.
		w.mu.Lock()
		delete(w.seen, path)
		w.mu.Unlock()
		logger.Error("failed to ingest %s: %v", path, err)
	} else {
		logger.Info("Ingested %s as %s (%d chunks)", filepath.Base(path), res.Document.ID, res.ChunkCount)
	}
	w.onResult(Result{Path: path, Ingest: res, Err: err})
}

func isSupported(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}
