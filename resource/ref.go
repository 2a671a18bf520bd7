package resource

import (
	"sync/atomic"

	"github.com/gogpu/framegraph/arena"
)

// refOwner is the slice of the Manager a Ref needs to adjust counts.
type refOwner interface {
	activate(arena.Handle)
	deactivate(arena.Handle)
}

// Ref is a checked-out reference to a managed resource. Constructing or
// cloning a Ref increments the resource's reference count; releasing it
// decrements the count. A resource whose count reaches zero is scheduled
// for deferred destruction by its Manager.
//
// Forgetting to call Release leaks the resource for the lifetime of the
// manager. Use Manager.WithNamed for scoped acquisition where possible.
//
// Release is safe to call from any goroutine and is idempotent: extra calls
// after the first are inert, so the count can never go negative.
type Ref struct {
	handle   arena.Handle
	owner    refOwner
	released atomic.Bool
}

func newRef(h arena.Handle, owner refOwner) *Ref {
	return &Ref{handle: h, owner: owner}
}

// Clone checks out an additional reference to the same resource.
// Clone panics if called on a released Ref.
func (r *Ref) Clone() *Ref {
	if r.released.Load() {
		panic("resource: Clone on released Ref")
	}
	r.owner.activate(r.handle)
	return newRef(r.handle, r.owner)
}

// Release returns the reference. The first call decrements the resource's
// reference count; subsequent calls do nothing.
func (r *Ref) Release() {
	if r.released.CompareAndSwap(false, true) {
		r.owner.deactivate(r.handle)
	}
}

// Handle returns the arena handle this Ref points at. The handle stays
// valid while at least one Ref for it is live.
func (r *Ref) Handle() arena.Handle {
	return r.handle
}
