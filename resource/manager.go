package resource

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/framegraph/arena"
)

// Default configuration constants.
const (
	// DefaultMaxResources is the default arena capacity.
	DefaultMaxResources = 1024

	// DefaultDestroyPerUpkeep is the default number of resources actually
	// destroyed per Upkeep call. Expired resources beyond the quota stay
	// buffered and drain on later calls.
	DefaultDestroyPerUpkeep = 10
)

// Meta describes one logical resource. It is created once per resource;
// the generated ID is the resource's identity for its entire life.
type Meta struct {
	// ID uniquely identifies the resource.
	ID uuid.UUID

	// Name is an optional human-readable identity for named lookup.
	Name string

	// Path is an optional source path for path lookup.
	Path string

	// Lifetime selects the destruction-delay class.
	Lifetime Lifetime
}

// NewMeta creates metadata for an anonymous resource.
func NewMeta(lifetime Lifetime) *Meta {
	return &Meta{ID: uuid.New(), Lifetime: lifetime}
}

// NewNamedMeta creates metadata for a resource addressable by name.
func NewNamedMeta(name string, lifetime Lifetime) *Meta {
	return &Meta{ID: uuid.New(), Name: name, Lifetime: lifetime}
}

// Handler materializes and destroys the concrete resource payloads.
// Create is called once per logical resource at registration; Destroy is
// called exactly once when the manager decides the resource's time is up.
//
// Handler methods are invoked with the manager's lock held and must not
// call back into the Manager.
type Handler[R any] interface {
	Create(meta *Meta) R
	Destroy(r R)
}

// Config configures a Manager. The zero value selects defaults.
type Config struct {
	// MaxResources caps the number of simultaneously live resources.
	// If 0, defaults to DefaultMaxResources.
	MaxResources int

	// DestroyPerUpkeep bounds destruction work per Upkeep call.
	// If 0, defaults to DefaultDestroyPerUpkeep.
	DestroyPerUpkeep int

	// Clock supplies the current time for eviction deadlines.
	// If nil, time.Now is used. Tests inject a fake clock here.
	Clock func() time.Time
}

// Manager is the lifetime cache: it owns resource payloads, their identity
// maps and the decision of when a released resource actually dies.
//
// All lookups hand out Refs, never raw payloads, so the reference count
// always mirrors the set of live tokens. Name and path collisions are
// resolved last-write-wins; the earlier binding is logged and forgotten.
//
// Manager methods are safe for concurrent use. Reference-count mutations
// from Ref tokens on other goroutines serialize on the same lock.
type Manager[R any] struct {
	mu      sync.Mutex
	handler Handler[R]
	clock   func() time.Time
	quota   int

	resources *arena.Arena[R]
	tracker   *refTracker
	meta      map[arena.Handle]*Meta
	ids       map[uuid.UUID]arena.Handle
	names     map[string]uuid.UUID
	paths     map[string]uuid.UUID

	backlog []R
	next    uint32
	free    []arena.Handle
	closed  bool
}

// NewManager creates a Manager that materializes payloads through handler.
func NewManager[R any](handler Handler[R], cfg Config) *Manager[R] {
	if cfg.MaxResources <= 0 {
		cfg.MaxResources = DefaultMaxResources
	}
	if cfg.DestroyPerUpkeep <= 0 {
		cfg.DestroyPerUpkeep = DefaultDestroyPerUpkeep
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Manager[R]{
		handler:   handler,
		clock:     cfg.Clock,
		quota:     cfg.DestroyPerUpkeep,
		resources: arena.New[R](cfg.MaxResources),
		tracker:   newRefTracker(),
		meta:      make(map[arena.Handle]*Meta),
		ids:       make(map[uuid.UUID]arena.Handle),
		names:     make(map[string]uuid.UUID),
		paths:     make(map[string]uuid.UUID),
	}
}

// Create registers the resource described by meta and returns a checked-out
// Ref for it. Creating an already-registered ID does not re-materialize the
// payload or touch the metadata; it only checks out another reference.
func (m *Manager[R]) Create(meta *Meta) *Ref {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.ids[meta.ID]; ok {
		m.tracker.Activate(h)
		return newRef(h, m)
	}

	h := m.allocHandle()
	m.resources.Insert(h, m.handler.Create(meta))
	m.meta[h] = meta
	m.ids[meta.ID] = h

	if meta.Name != "" {
		if prev, ok := m.names[meta.Name]; ok && prev != meta.ID {
			slogger().Warn("resource: name re-bound, last write wins",
				"name", meta.Name, "previous", prev, "id", meta.ID)
		}
		m.names[meta.Name] = meta.ID
	}
	if meta.Path != "" {
		if prev, ok := m.paths[meta.Path]; ok && prev != meta.ID {
			slogger().Warn("resource: path re-bound, last write wins",
				"path", meta.Path, "previous", prev, "id", meta.ID)
		}
		m.paths[meta.Path] = meta.ID
	}

	m.tracker.Create(h, meta.Lifetime)
	slogger().Debug("resource: created",
		"id", meta.ID, "name", meta.Name, "lifetime", meta.Lifetime.String())
	return newRef(h, m)
}

// GetByID checks out a reference to the resource with the given identity.
// Returns (nil, false) if the ID is unknown or the resource was destroyed.
func (m *Manager[R]) GetByID(id uuid.UUID) (*Ref, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id)
}

// GetByName checks out a reference by registered name.
func (m *Manager[R]) GetByName(name string) (*Ref, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.names[name]
	if !ok {
		return nil, false
	}
	return m.getLocked(id)
}

// GetByPath checks out a reference by registered source path.
func (m *Manager[R]) GetByPath(path string) (*Ref, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.paths[path]
	if !ok {
		return nil, false
	}
	return m.getLocked(id)
}

// Get checks out a reference for previously registered metadata.
func (m *Manager[R]) Get(meta *Meta) (*Ref, bool) {
	return m.GetByID(meta.ID)
}

// Resource returns a copy of the payload a Ref points at. A copy, not a
// pointer: arena storage relocates when other resources are destroyed, so a
// pointer into it would silently come to alias an unrelated payload.
// Returns the zero value and false if the Ref has been released or its
// resource is gone.
func (m *Manager[R]) Resource(ref *Ref) (R, bool) {
	var zero R
	if ref == nil || ref.released.Load() {
		return zero, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.resources.Get(ref.handle); ok {
		return *r, true
	}
	return zero, false
}

// WithNamed acquires the named resource, calls fn with its payload and
// releases the reference before returning. Returns false without calling fn
// if the name is unknown.
func (m *Manager[R]) WithNamed(name string, fn func(R)) bool {
	ref, ok := m.GetByName(name)
	if !ok {
		return false
	}
	defer ref.Release()

	if r, ok := m.Resource(ref); ok {
		fn(r)
		return true
	}
	return false
}

// Upkeep sweeps the eviction queue once. Expired unreferenced resources are
// removed from the identity maps immediately; their payloads are destroyed
// at a bounded rate (DestroyPerUpkeep per call), with the overflow buffered
// for later calls. The external frame driver calls this once per tick.
func (m *Manager[R]) Upkeep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.tracker.Upkeep(now) {
		value, ok := m.resources.Remove(h)
		if !ok {
			continue
		}
		m.forgetLocked(h)
		m.backlog = append(m.backlog, value)
	}

	n := min(m.quota, len(m.backlog))
	for i := 0; i < n; i++ {
		value := m.backlog[len(m.backlog)-1]
		m.backlog = m.backlog[:len(m.backlog)-1]
		m.handler.Destroy(value)
	}
	if len(m.backlog) > 0 {
		slogger().Debug("resource: destruction backlog carried over",
			"pending", len(m.backlog))
	}
}

// Len returns the number of live (not yet destroyed) resources.
func (m *Manager[R]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resources.Len()
}

// Close destroys every remaining resource, including LifetimeForever ones
// and any buffered backlog. The manager must not be used afterwards.
func (m *Manager[R]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	for _, value := range m.backlog {
		m.handler.Destroy(value)
	}
	m.backlog = nil

	for _, h := range m.resources.Handles() {
		if value, ok := m.resources.Remove(h); ok {
			m.handler.Destroy(value)
		}
	}
	m.meta = map[arena.Handle]*Meta{}
	m.ids = map[uuid.UUID]arena.Handle{}
	m.names = map[string]uuid.UUID{}
	m.paths = map[string]uuid.UUID{}
}

// getLocked checks out a reference for a known ID. Caller holds m.mu.
func (m *Manager[R]) getLocked(id uuid.UUID) (*Ref, bool) {
	h, ok := m.ids[id]
	if !ok {
		return nil, false
	}
	m.tracker.Activate(h)
	return newRef(h, m), true
}

// allocHandle hands out the next free arena handle, reusing indices whose
// resources were destroyed. The uuid in Meta remains the never-reused
// identity; arena indices only have to be unique among live resources.
func (m *Manager[R]) allocHandle() arena.Handle {
	if n := len(m.free); n > 0 {
		h := m.free[n-1]
		m.free = m.free[:n-1]
		return h
	}
	h := arena.Handle(m.next)
	m.next++
	return h
}

// forgetLocked drops every identity map entry for a destroyed handle and
// recycles the index. Caller holds m.mu.
func (m *Manager[R]) forgetLocked(h arena.Handle) {
	meta, ok := m.meta[h]
	if !ok {
		return
	}
	delete(m.meta, h)
	delete(m.ids, meta.ID)
	if meta.Name != "" && m.names[meta.Name] == meta.ID {
		delete(m.names, meta.Name)
	}
	if meta.Path != "" && m.paths[meta.Path] == meta.ID {
		delete(m.paths, meta.Path)
	}
	m.free = append(m.free, h)
}

// activate implements refOwner for Ref tokens.
func (m *Manager[R]) activate(h arena.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracker.Activate(h)
}

// deactivate implements refOwner for Ref tokens.
func (m *Manager[R]) deactivate(h arena.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracker.Deactivate(h, m.clock())
}
