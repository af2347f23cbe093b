// Package hotreload implements spec.md §5's watch loop: observe the
// snapshot file (and any merged module files) for writes, debounce bursts
// of events, then ask a driver.Driver to reload and re-run the watched
// entry. Adapted from the teacher's internal/daemon.Watcher, trading its
// directory-of-source-files model for a small, fixed set of watched
// snapshot paths.
package hotreload

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hflisp/calcit/internal/driver"
	"github.com/hflisp/calcit/internal/util"
)

// Watcher observes a set of snapshot files and triggers a reload + re-run
// of (entryNs, entryDef) on the underlying driver after each debounced
// burst of writes.
type Watcher struct {
	watcher         *fsnotify.Watcher
	drv             *driver.Driver
	entryNs         string
	entryDef        string
	excludePatterns []string
	debounceMs      atomic.Int64

	mu           sync.Mutex
	pendingFiles map[string]time.Time

	stopCh   chan struct{}
	stopOnce sync.Once

	// OnReload, if set, is called after each reload with the namespaces
	// touched and the fresh run's result/error; when the reload itself
	// fails it is called with nil, nil and the reload error.
	OnReload func(touched []string, result interface{}, err error)
}

// Config configures a Watcher (adapted from the teacher's WatcherConfig).
type Config struct {
	Driver          *driver.Driver
	EntryNs         string
	EntryDef        string
	Paths           []string // files to watch directly (the snapshot, merged modules)
	ExcludePatterns []string
	DebounceMs      int
}

func New(cfg Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounceMs := cfg.DebounceMs
	if debounceMs == 0 {
		debounceMs = 100
	}

	w := &Watcher{
		watcher:         fsWatcher,
		drv:             cfg.Driver,
		entryNs:         cfg.EntryNs,
		entryDef:        cfg.EntryDef,
		excludePatterns: cfg.ExcludePatterns,
		pendingFiles:    map[string]time.Time{},
		stopCh:          make(chan struct{}),
	}
	w.debounceMs.Store(int64(debounceMs))

	for _, p := range cfg.Paths {
		if w.shouldExclude(p) {
			continue
		}
		if err := fsWatcher.Add(filepath.Dir(p)); err != nil {
			log.Printf("hotreload: failed to watch %s: %v", p, err)
		}
	}
	return w, nil
}

// Watch runs the event loop until ctx is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("hotreload: watcher error: %v", err)
		}
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
}

func (w *Watcher) shouldExclude(path string) bool {
	name := filepath.Base(path)
	for _, pattern := range w.excludePatterns {
		if util.MatchPattern(pattern, name) {
			return true
		}
	}
	return false
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.shouldExclude(event.Name) {
		return
	}
	if filepath.Ext(event.Name) != ".cirru" {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		w.queueFile(event.Name)
	}
}

func (w *Watcher) queueFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingFiles[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(w.debounceMs.Load()) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	threshold := time.Duration(w.debounceMs.Load()) * time.Millisecond
	dirty := false
	for path, queuedAt := range w.pendingFiles {
		if now.Sub(queuedAt) >= threshold {
			dirty = true
			delete(w.pendingFiles, path)
		}
	}
	w.mu.Unlock()

	if !dirty {
		return
	}
	w.reload(ctx)
}

// reload asks the driver to reload the snapshot and clears the evaluated
// table for every touched namespace before re-running the entry (spec.md
// §5: "clear_all_program_evaled_defs" followed by re-evaluation).
func (w *Watcher) reload(ctx context.Context) {
	touched, err := w.drv.Reload(ctx)
	if err != nil {
		log.Printf("hotreload: reload failed: %v", err)
		if w.OnReload != nil {
			w.OnReload(nil, nil, err)
		}
		return
	}
	w.drv.Prog.ClearEvaled(touched...)

	result, rerr := w.drv.RunProgram(w.entryNs, w.entryDef, nil)
	if rerr != nil {
		log.Printf("hotreload: re-run failed: %v", driver.Display(rerr))
	}
	if w.OnReload != nil {
		w.OnReload(touched, result, rerr)
	}
}
