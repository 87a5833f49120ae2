package workspace

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sdd-engine/sdd/internal/logging"
)

// DefaultDebounce is the quiet period after the last file event before a
// change is signalled.
const DefaultDebounce = 300 * time.Millisecond

// Watcher monitors a project root for workflow file changes. fsnotify is not
// recursive, so the root, the project directory, the workflows directory and
// each workflow directory are watched individually and directories that
// appear later are added as they are created.
type Watcher struct {
	Root    string
	Changes <-chan struct{} // one coalesced signal per debounced burst

	changes  chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *logging.Logger

	mu      sync.Mutex
	watched map[string]bool
}

// NewWatcher creates a watcher for the project rooted at root. A zero or
// negative debounce signals on every relevant event.
func NewWatcher(root string, debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan struct{}, 1)
	return &Watcher{
		Root:     root,
		Changes:  ch,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: debounce,
		logger:   logger,
		watched:  make(map[string]bool),
	}, nil
}

// Start adds the initial watches and begins the event loop. On error the
// watcher is closed and must not be stopped.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Root); err != nil {
		w.watcher.Close()
		return err
	}
	w.mu.Lock()
	w.watched[filepath.Clean(w.Root)] = true
	w.mu.Unlock()

	w.syncWatches()
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	tick := w.debounce / 3
	if tick < 5*time.Millisecond {
		tick = 5 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var pending time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.signal()
				}
				return
			}
			if !w.isRelevant(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			if event.Has(fsnotify.Create) {
				w.syncWatches()
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.forget(event.Name)
			}
			w.logger.Debug("workflow file event", "path", event.Name, "op", event.Op.String())

			if w.debounce <= 0 {
				w.signal()
				continue
			}
			pending = time.Now()

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				pending = time.Time{}
				w.signal()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// signal delivers a change without blocking; an unread signal already
// covers this one.
func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// isRelevant reports whether a path can affect the loaded workspace: the
// project directory, the workflows directory, a workflow directory, or a
// workflow file.
func (w *Watcher) isRelevant(name string) bool {
	name = filepath.Clean(name)
	project := ProjectDir(w.Root)
	workflows := WorkflowsDir(w.Root)

	switch {
	case name == filepath.Clean(project), name == filepath.Clean(workflows):
		return true
	case filepath.Dir(name) == filepath.Clean(workflows):
		return true
	case filepath.Base(name) == WorkflowFileName && filepath.Dir(filepath.Dir(name)) == filepath.Clean(workflows):
		return true
	}
	return false
}

// syncWatches adds watches for the project, workflows and workflow
// directories that exist and are not yet watched.
func (w *Watcher) syncWatches() {
	dirs := []string{ProjectDir(w.Root), WorkflowsDir(w.Root)}
	if entries, err := os.ReadDir(WorkflowsDir(w.Root)); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, filepath.Join(WorkflowsDir(w.Root), e.Name()))
			}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if w.watched[dir] {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("adding watch", "dir", dir, "error", err)
			continue
		}
		w.watched[dir] = true
	}
}

// forget drops a removed directory and everything beneath it from the
// watched set so that it is re-added if it reappears.
func (w *Watcher) forget(name string) {
	name = filepath.Clean(name)
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range w.watched {
		if dir == name || filepath.Dir(dir) == name || filepath.Dir(filepath.Dir(dir)) == name {
			if dir != filepath.Clean(w.Root) {
				delete(w.watched, dir)
			}
		}
	}
}
