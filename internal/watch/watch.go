// Package watch re-runs a commit pass whenever worktree files change.
// Events are coalesced with a trailing debounce so editor save bursts
// trigger a single pass.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chmouel/lazycommit/internal/log"
)

// Debounce is the quiet window after the last event before a pass runs.
const Debounce = 600 * time.Millisecond

// Directory names never watched. Commits only touch .git, so the watcher
// never reacts to its own passes.
var skipDirs = map[string]struct{}{
	".git": {}, "vendor": {}, "node_modules": {}, "dist": {}, "third_party": {},
}

// Watcher watches a worktree recursively and coalesces change events.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	events  chan struct{}
	done    chan struct{}

	mu    sync.Mutex
	paths map[string]struct{}
}

// New builds a watcher rooted at the worktree root and registers every
// directory below it, skipping .git and vendored trees.
func New(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:    root,
		watcher: fsw,
		events:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		paths:   make(map[string]struct{}),
	}
	w.addWatchTree(root)

	go w.run()
	return w, nil
}

// Close stops the watcher. Safe to call once.
func (w *Watcher) Close() {
	close(w.done)
	_ = w.watcher.Close()
}

// Events returns the coalesced change signal.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Run executes pass after each debounced batch of changes until ctx is
// cancelled. Pass errors are reported through errf and do not stop the
// loop.
func (w *Watcher) Run(ctx context.Context, pass func(context.Context) error, errf func(format string, args ...any)) error {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-w.events:
			if timer == nil {
				timer = time.NewTimer(Debounce)
				timerC = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timerC:
				default:
				}
			}
			timer.Reset(Debounce)

		case <-timerC:
			timer = nil
			timerC = nil
			if err := pass(ctx); err != nil {
				errf("watch: pass failed: %v", err)
			}
		}
	}
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.skipped(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}
			w.signal()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: watcher error: %v", err)
		}
	}
}

// signal notifies the listener; a pending signal is enough.
func (w *Watcher) signal() {
	select {
	case <-w.done:
		return
	default:
	}
	select {
	case w.events <- struct{}{}:
	default:
	}
}

// skipped reports whether the path lies inside a skipped directory.
func (w *Watcher) skipped(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		if _, ok := skipDirs[segment]; ok {
			return true
		}
	}
	return false
}

// maybeWatchNewDir registers a freshly created directory and anything
// already inside it.
func (w *Watcher) maybeWatchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.addWatchTree(path)
}

func (w *Watcher) addWatchTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipped(path) {
			return filepath.SkipDir
		}
		w.addWatchDir(path)
		return nil
	})
}

func (w *Watcher) addWatchDir(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.paths[path]; ok {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		log.Printf("watch: add failed for %s: %v", path, err)
		return
	}
	w.paths[path] = struct{}{}
}
