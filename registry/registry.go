package registry

import "github.com/google/uuid"

// Handle constrains the typed uuid-backed handles a Registry is keyed by.
// Declare a distinct named type per registry, e.g.
//
//	type PipelineHandle [16]byte
type Handle interface {
	~[16]byte
}

// NewHandle generates a fresh random handle of the requested type.
func NewHandle[H Handle]() H {
	return H(uuid.New())
}

// HandleString renders a handle in canonical uuid form, for labels and logs.
func HandleString[H Handle](h H) string {
	return uuid.UUID(h).String()
}

// Registry maps generated handles to objects, with optional name and path
// indexes. Name and path bindings resolve collisions last-write-wins: the
// newest registration owns the name, the older object stays reachable by
// handle only.
type Registry[H Handle, T any] struct {
	items map[H]*T
	names map[string]H
	paths map[string]H
	order []H
}

// New creates an empty registry.
func New[H Handle, T any]() *Registry[H, T] {
	return &Registry[H, T]{
		items: make(map[H]*T),
		names: make(map[string]H),
		paths: make(map[string]H),
	}
}

// Add registers the object and returns its generated handle. An empty name
// skips the name index.
func (r *Registry[H, T]) Add(object T, name string) H {
	return r.AddWithPath(object, name, "")
}

// AddWithPath registers the object under an optional name and source path.
func (r *Registry[H, T]) AddWithPath(object T, name, path string) H {
	h := NewHandle[H]()
	r.items[h] = &object
	r.order = append(r.order, h)
	if name != "" {
		if _, taken := r.names[name]; taken {
			slogger().Warn("registry: name re-bound, last write wins", "name", name)
		}
		r.names[name] = h
	}
	if path != "" {
		if _, taken := r.paths[path]; taken {
			slogger().Warn("registry: path re-bound, last write wins", "path", path)
		}
		r.paths[path] = h
	}
	return h
}

// Get returns the object registered under h.
func (r *Registry[H, T]) Get(h H) (*T, bool) {
	object, ok := r.items[h]
	return object, ok
}

// ByName resolves a name to its handle. A miss is an ordinary not-found,
// never an error.
func (r *Registry[H, T]) ByName(name string) (H, bool) {
	h, ok := r.names[name]
	return h, ok
}

// ByPath resolves a source path to its handle.
func (r *Registry[H, T]) ByPath(path string) (H, bool) {
	h, ok := r.paths[path]
	return h, ok
}

// GetByName returns the object registered under name.
func (r *Registry[H, T]) GetByName(name string) (*T, bool) {
	h, ok := r.names[name]
	if !ok {
		return nil, false
	}
	return r.Get(h)
}

// Reindex binds an additional name to an already registered handle,
// last-write-wins like Add. Unknown handles are ignored.
func (r *Registry[H, T]) Reindex(h H, name string) {
	if name == "" || !r.Contains(h) {
		return
	}
	r.names[name] = h
}

// Contains reports whether h is registered.
func (r *Registry[H, T]) Contains(h H) bool {
	_, ok := r.items[h]
	return ok
}

// Len returns the number of registered objects.
func (r *Registry[H, T]) Len() int {
	return len(r.items)
}

// Handles returns all handles in registration order.
func (r *Registry[H, T]) Handles() []H {
	out := make([]H, len(r.order))
	copy(out, r.order)
	return out
}
