package value

import (
	"fmt"
	"sync"
)

// Ref is a mutable atom cell (spec.md §8): a single compare-and-swap-free
// mutex-guarded slot plus a set of named watcher callbacks invoked after
// every reset/swap. Refs are the one other place (besides Thunk) the value
// universe admits mutation; everything reachable through a Ref's Val is
// still the ordinary persistent value universe.
type Ref struct {
	mu       sync.Mutex
	path     string
	val      Value
	watchers map[string]WatcherFn
}

// WatcherFn is invoked as (path, ref, oldVal, newVal) after a Reset/Swap,
// matching spec.md §8's watcher signature.
type WatcherFn func(path string, ref *Ref, oldVal, newVal Value)

func NewRef(path string, initial Value) *Ref {
	return &Ref{path: path, val: initial, watchers: map[string]WatcherFn{}}
}

func (*Ref) Kind() Kind { return KindRef }

func (r *Ref) Path() string { return r.path }

func (r *Ref) Deref() Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.val
}

// Reset replaces the value and fires watchers with the old/new pair.
func (r *Ref) Reset(newVal Value) {
	r.mu.Lock()
	old := r.val
	r.val = newVal
	watchers := make([]WatcherFn, 0, len(r.watchers))
	for _, w := range r.watchers {
		watchers = append(watchers, w)
	}
	r.mu.Unlock()
	for _, w := range watchers {
		w(r.path, r, old, newVal)
	}
}

// Swap applies f to the current value and stores the result, firing
// watchers exactly like Reset. f runs under the lock per spec.md §8's
// "swap is atomic with respect to other swap/reset calls on the same ref".
func (r *Ref) Swap(f func(old Value) Value) Value {
	r.mu.Lock()
	old := r.val
	newVal := f(old)
	r.val = newVal
	watchers := make([]WatcherFn, 0, len(r.watchers))
	for _, w := range r.watchers {
		watchers = append(watchers, w)
	}
	r.mu.Unlock()
	for _, w := range watchers {
		w(r.path, r, old, newVal)
	}
	return newVal
}

// AddWatch registers fn under key, failing if key is already watching
// this ref (spec.md §4.7/§9: "add-watch(ref, tag, fn) fails if tag is
// already present").
func (r *Ref) AddWatch(key string, fn WatcherFn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watchers[key]; ok {
		return fmt.Errorf("watcher %q already added on ref %s", key, r.path)
	}
	r.watchers[key] = fn
	return nil
}

// RemoveWatch unregisters key, failing if it is not currently watching
// this ref (spec.md §4.7/§9: "remove-watch(ref, tag) fails if absent").
func (r *Ref) RemoveWatch(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watchers[key]; !ok {
		return fmt.Errorf("watcher %q not found on ref %s", key, r.path)
	}
	delete(r.watchers, key)
	return nil
}
