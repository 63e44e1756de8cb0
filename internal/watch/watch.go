// Package watch reloads the workbook when a category file changes on disk.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/logging"
)

// ReloadFunc is called once per debounce window in which a watched file
// changed content.
type ReloadFunc func(ctx context.Context, changed []string) error

// Watcher watches a directory of category files.
type Watcher struct {
	dir      string
	files    map[string]bool
	debounce time.Duration
	reload   ReloadFunc
	watcher  *fsnotify.Watcher
	logger   *zerolog.Logger

	mu      sync.Mutex
	pending map[string]fsnotify.Op
	hashes  map[string]string
	reloads int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long changes are collected before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher over files (base names) in dir. An empty file
// list watches every .csv file.
func New(dir string, files []string, reload ReloadFunc, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		dir:      dir,
		files:    make(map[string]bool, len(files)),
		debounce: constants.WatchDebounce,
		reload:   reload,
		watcher:  fsw,
		logger:   logging.Default(),
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
	}
	for _, f := range files {
		w.files[filepath.Base(f)] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start seeds content hashes, adds the directory watch and processes
// events until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && w.watched(e.Name()) {
			path := filepath.Join(w.dir, e.Name())
			if h, err := hashFile(path); err == nil {
				w.hashes[path] = h
			}
		}
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.run(ctx)
	w.logger.Info().
		Str("dir", w.dir).
		Dur("debounce", w.debounce).
		Int("files", len(w.files)).
		Msg("Watching category files")
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Reloads returns how many reloads were triggered.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *Watcher) watched(name string) bool {
	if len(w.files) == 0 {
		return filepath.Ext(name) == ".csv"
	}
	return w.files[name]
}

func (w *Watcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.watched(filepath.Base(event.Name)) {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] |= event.Op
			w.mu.Unlock()
			w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Category file change detected")

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// flush reloads once if any pending file changed content.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.mu.Unlock()
	if len(pending) == 0 {
		return
	}

	var changed []string
	for path, op := range pending {
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				delete(w.hashes, path)
				changed = append(changed, filepath.Base(path))
				continue
			}
		}
		h, err := hashFile(path)
		if err != nil {
			w.logger.Warn().Err(err).Str("path", path).Msg("Failed to read changed file")
			continue
		}
		if w.hashes[path] == h {
			continue
		}
		w.hashes[path] = h
		changed = append(changed, filepath.Base(path))
	}
	if len(changed) == 0 {
		return
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	w.logger.Info().Strs("files", changed).Msg("Category files changed, reloading")
	if err := w.reload(ctx, changed); err != nil {
		w.logger.Error().Err(err).Msg("Reload after file change failed")
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
