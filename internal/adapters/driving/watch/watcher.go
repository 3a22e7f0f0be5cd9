// Package watch ingests documents dropped into a directory.
//
// Files are uploaded once writes have been quiet for the debounce period, so
// partially copied files are not read. A file is re-ingested only when its
// content changes.
package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/logger"
)

// DefaultDebounce is the quiet period before a changed file is ingested.
const DefaultDebounce = 2 * time.Second

// Uploader ingests a document.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error)
}

// Config tunes the watcher.
type Config struct {
	// Debounce is the quiet period after the last write. Zero uses DefaultDebounce.
	Debounce time.Duration

	// IngestExisting uploads supported files already in the directory on start.
	IngestExisting bool

	// OnIngest is called after every upload attempt.
	OnIngest func(path string, result *domain.UploadResult, err error)
}

// Watcher uploads supported files that appear or change in a directory.
type Watcher struct {
	dir      string
	uploader Uploader
	config   Config

	mu      sync.Mutex
	pending map[string]pendingUpload
	busy    map[string]bool
	digests map[string][sha256.Size]byte
	gen     uint64
	stopped bool
	wg      sync.WaitGroup
}

// pendingUpload is a debounce timer. Only the callback whose gen still
// matches the pending entry may ingest.
type pendingUpload struct {
	timer *time.Timer
	gen   uint64
}

// New creates a watcher for dir.
func New(dir string, uploader Uploader, config Config) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		uploader: uploader,
		config:   config,
		pending:  make(map[string]pendingUpload),
		busy:     make(map[string]bool),
		digests:  make(map[string][sha256.Size]byte),
	}
}

// Run watches until the context is cancelled, then waits for in-flight uploads.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s (debounce %s)", w.dir, w.config.Debounce)

	if w.config.IngestExisting {
		w.scanExisting(ctx)
	}

	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleFsEvent(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// handleFsEvent schedules or cancels ingestion for an event.
// It reports whether an upload was scheduled.
func (w *Watcher) handleFsEvent(ctx context.Context, event fsnotify.Event) bool {
	path := event.Name
	if isHidden(filepath.Base(path)) {
		return false
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.cancel(path)
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if _, err := domain.FormatFromFilename(path); err != nil {
		logger.Notice("Skipping %s: %v", filepath.Base(path), err)
		return false
	}

	w.schedule(ctx, path)
	return true
}

// schedule (re)starts the debounce timer for path. A superseded timer is
// stopped and, if it already fired, its callback sees a stale gen and exits.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.pending[path] = pendingUpload{
		gen:   gen,
		timer: time.AfterFunc(w.config.Debounce, func() { w.fire(ctx, path, gen) }),
	}
}

// fire runs a debounce callback. At most one upload per path runs at a time;
// a callback that finds one in flight schedules itself again.
func (w *Watcher) fire(ctx context.Context, path string, gen uint64) {
	w.mu.Lock()
	if p, ok := w.pending[path]; !ok || p.gen != gen || w.stopped {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	if w.busy[path] {
		w.mu.Unlock()
		w.schedule(ctx, path)
		return
	}
	w.busy[path] = true
	w.wg.Add(1)
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.busy, path)
		w.mu.Unlock()
		w.wg.Done()
	}()

	if ctx.Err() != nil {
		return
	}
	w.ingest(ctx, path)
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

// stop cancels pending timers and waits for running uploads.
func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// ingest uploads path unless its content was already ingested.
// It reports whether an upload was attempted.
func (w *Watcher) ingest(ctx context.Context, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Reading %s: %v", path, err)
		}
		return false
	}

	digest := sha256.Sum256(data)
	w.mu.Lock()
	if prev, ok := w.digests[path]; ok && prev == digest {
		w.mu.Unlock()
		logger.Debug("Unchanged, skipping %s", path)
		return false
	}
	w.mu.Unlock()

	result, err := w.uploader.Upload(ctx, filepath.Base(path), data)
	if err == nil {
		w.mu.Lock()
		w.digests[path] = digest
		w.mu.Unlock()
		logger.Info("Ingested %s as %s (%d chunks)", filepath.Base(path), result.DocumentID, result.ChunkCount)
	} else {
		logger.Warn("Ingesting %s failed: %v", filepath.Base(path), err)
	}

	if w.config.OnIngest != nil {
		w.config.OnIngest(path, result, err)
	}
	return true
}

func (w *Watcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("Listing %s: %v", w.dir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) {
			continue
		}
		if _, err := domain.FormatFromFilename(e.Name()); err != nil {
			continue
		}
		w.ingest(ctx, filepath.Join(w.dir, e.Name()))
	}
}

// isHidden reports whether a file name is a dotfile or an editor temp file.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") || strings.HasSuffix(name, "~")
}
