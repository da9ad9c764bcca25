// Package watcher re-runs generation when its input files change.
//
// Overview:
//   - Responsibility: Watch manifest and launch-bounds files, debounce bursts of events
//   - Key Types: Watcher
//   - Concurrency Model: Run blocks on one goroutine; callbacks never overlap
//   - Error Semantics: Setup failures are IO errors; callback errors are logged, not fatal
//
// Usage:
//
//	w, err := watcher.New([]string{"kernelgen.yaml"})
//	err = w.Run(ctx, func(ctx context.Context) error { return regenerate(ctx) })
package watcher

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/logx"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a fixed set of files. Parent directories are watched so that
// editors replacing a file by rename are still observed.
type Watcher struct {
	files    map[string]struct{}
	dirs     []string
	debounce time.Duration
	logger   logx.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger logx.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a watcher for files.
//
// Returns:
//   - *Watcher: Watcher ready to Run
//   - error: INVALID_ARGUMENT if no files are given
func New(files []string, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.New(errors.CodeInvalidArgument, "no files to watch")
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(files)),
		debounce: DefaultDebounce,
		logger:   logx.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, errors.Wrap(errors.CodeIO, "resolve "+f, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		w.dirs = append(w.dirs, d)
	}
	sort.Strings(w.dirs)
	return w, nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Run blocks until ctx is done, calling onChange once per settled burst of changes.
//
// Parameters:
//   - ctx: Cancelling it stops the watcher
//   - onChange: Invoked on the Run goroutine; its errors are logged
//
// Returns:
//   - error: IO error if watching cannot start, nil on cancellation
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.CodeIO, "start watcher", err)
	}
	defer fsw.Close()

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			return errors.Wrap(errors.CodeIO, "watch "+dir, err)
		}
		w.logger.Debug("watching", logx.Str("dir", dir))
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change", logx.Str("path", event.Name), logx.Str("op", event.Op.String()))
			pending = time.After(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logx.Str("error", err.Error()))

		case <-pending:
			pending = nil
			if err := onChange(ctx); err != nil {
				w.logger.Error(err, "regeneration failed")
			}
		}
	}
}

// relevant reports whether event touches a watched file in a way that may change it.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if _, ok := w.files[abs]; !ok {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
