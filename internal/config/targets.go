package config

import "sync"

// Targets is the current set of canvas names to poll. It exists so the
// canvases-file watcher can swap the list while a cycle is between runs;
// readers always see a consistent snapshot.
type Targets struct {
	mu    sync.RWMutex
	names []string
}

// NewTargets creates a target list seeded with the given names.
func NewTargets(names ...string) *Targets {
	t := &Targets{}
	t.Set(names)
	return t
}

// Set replaces the target list.
func (t *Targets) Set(names []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names = make([]string, len(names))
	copy(t.names, names)
}

// Get returns a snapshot of the target list.
func (t *Targets) Get() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}
