package backend

import (
	"sort"
	"sync"

	"github.com/gogpu/framegraph"
)

// Options configures device creation.
type Options struct {
	// Label names the device for logs and object labels.
	Label string

	// Adapter optionally carries a backend-specific adapter object, for
	// example a wgpu adapter id. Backends that require one fail without it.
	Adapter any
}

// Factory creates a device with the given options.
type Factory func(opts Options) (framegraph.Device, error)

// Standard priorities: 100 for GPU backends, 10 for software fallbacks.
type entry struct {
	priority  int
	factory   Factory
	available func() bool
}

var (
	mu      sync.RWMutex
	entries = make(map[string]entry)
)

// Register adds a backend under name. Typically called from an init
// function in the backend's package. Registering an existing name
// replaces the previous entry. A nil available means always available.
func Register(name string, priority int, factory Factory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	mu.Lock()
	defer mu.Unlock()
	entries[name] = entry{priority: priority, factory: factory, available: available}
}

// Unregister removes a backend. Useful for tests.
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(entries, name)
}

// Available returns the names of available backends, best first.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	return sortedNames(true)
}

// List returns all registered backend names, best first.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	return sortedNames(false)
}

// New creates a device from the best available backend. Backends are
// tried in priority order; the first one that succeeds wins.
func New(opts Options) (framegraph.Device, error) {
	var lastErr error
	for _, name := range Available() {
		dev, err := NewByName(name, opts)
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoBackendAvailable
}

// NewByName creates a device from a specific backend.
func NewByName(name string, opts Options) (framegraph.Device, error) {
	mu.RLock()
	e, ok := entries[name]
	mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if !e.available() {
		return nil, &UnavailableError{Name: name}
	}
	return e.factory(opts)
}

// sortedNames returns backend names by descending priority, name as the
// tie-break. Caller holds mu.
func sortedNames(onlyAvailable bool) []string {
	names := make([]string, 0, len(entries))
	for name, e := range entries {
		if onlyAvailable && !e.available() {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := entries[names[i]].priority, entries[names[j]].priority
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})
	return names
}
