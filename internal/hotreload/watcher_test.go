package hotreload

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestShouldExcludeMatchesGlobPattern(t *testing.T) {
	w := &Watcher{excludePatterns: []string{"*.tmp.cirru"}}
	if !w.shouldExclude("/tmp/scratch.tmp.cirru") {
		t.Fatal("expected a matching pattern to be excluded")
	}
	if w.shouldExclude("/tmp/compact.cirru") {
		t.Fatal("expected a non-matching file to be watched")
	}
}

func TestHandleEventIgnoresNonCirruFiles(t *testing.T) {
	w := &Watcher{pendingFiles: map[string]time.Time{}}
	w.handleEvent(fsnotify.Event{Name: "/tmp/compact.json", Op: fsnotify.Write})
	if len(w.pendingFiles) != 0 {
		t.Fatal("expected non-.cirru writes to be ignored")
	}
	w.handleEvent(fsnotify.Event{Name: "/tmp/compact.cirru", Op: fsnotify.Write})
	if len(w.pendingFiles) != 1 {
		t.Fatal("expected a .cirru write to be queued")
	}
}
