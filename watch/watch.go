// Package watch re-runs a callback whenever a watched Arazzo document changes on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// ErrNoPaths is returned by Run when nothing was given to watch.
const ErrNoPaths = errors.Error("no paths to watch")

// DefaultDebounce is how long a file must stay quiet before the callback runs.
const DefaultDebounce = 300 * time.Millisecond

var (
	extensions = []string{".yaml", ".yml", ".json"}
	ignoreDirs = []string{".git", "node_modules"}
)

// Func is called with the absolute path of a changed document.
type Func func(ctx context.Context, path string)

// Watcher watches files and directories. Directories are watched recursively.
type Watcher struct {
	fn       Func
	paths    []string
	debounce time.Duration
	ready    chan struct{}

	files map[string]bool
	dirs  map[string]bool
}

// Option configures a Watcher.
type Option func(w *Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a Watcher calling fn for changes under paths.
func New(fn Func, paths []string, opts ...Option) *Watcher {
	w := &Watcher{
		fn:       fn,
		paths:    paths,
		debounce: DefaultDebounce,
		ready:    make(chan struct{}),
		files:    map[string]bool{},
		dirs:     map[string]bool{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ready is closed once every path is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. The callback runs on the calling goroutine, one change at a time.
// Run returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.paths) == 0 {
		return ErrNoPaths
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	for _, p := range w.paths {
		if err := w.add(ctx, fw, p); err != nil {
			return err
		}
	}
	close(w.ready)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fire := make(chan string)
	pending := map[string]*time.Timer{}
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleDirCreate(ctx, fw, ev)
			if !w.relevant(ev) {
				continue
			}

			name := ev.Name
			if t, ok := pending[name]; ok {
				t.Stop()
			}
			pending[name] = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- name:
				case <-ctx.Done():
				}
			})
		case name := <-fire:
			delete(pending, name)
			logger.G(ctx).WithField("file", name).Debug("change detected")
			w.fn(ctx, name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("file watcher error")
		}
	}
}

func (w *Watcher) add(ctx context.Context, fw *fsnotify.Watcher, p string) error {
	abs, err := filepath.Abs(p)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", p, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", p, err)
	}

	if !info.IsDir() {
		w.files[abs] = true
		return fw.Add(filepath.Dir(abs))
	}

	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != abs && slices.Contains(ignoreDirs, d.Name()) {
			return filepath.SkipDir
		}
		w.dirs[path] = true
		logger.G(ctx).WithField("directory", path).Debug("watching directory")
		return fw.Add(path)
	})
}

// handleDirCreate starts watching directories created inside a recursively watched directory.
func (w *Watcher) handleDirCreate(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) || !w.dirs[filepath.Dir(ev.Name)] {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.IsDir() || slices.Contains(ignoreDirs, info.Name()) {
		return
	}
	if err := fw.Add(ev.Name); err != nil {
		logger.G(ctx).WithError(err).WithField("directory", ev.Name).Warn("failed to watch new directory")
		return
	}
	w.dirs[ev.Name] = true
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if !slices.Contains(extensions, strings.ToLower(filepath.Ext(ev.Name))) {
		return false
	}
	return w.files[ev.Name] || w.dirs[filepath.Dir(ev.Name)]
}
