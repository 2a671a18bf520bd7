package resource

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/gogpu/framegraph/arena"
)

// reference is the bookkeeping record for one registered resource. The
// epoch identifies one life of a handle: arena indices are recycled by the
// manager, so queue entries must not outlive the life that queued them.
type reference struct {
	handle   arena.Handle
	epoch    uint64
	count    uint64
	lifetime Lifetime
}

// queuedRef is a pending-destruction entry in the eviction queue.
// An entry without a deadline (LifetimeForever) sorts after every entry
// with one.
type queuedRef struct {
	handle      arena.Handle
	epoch       uint64
	deadline    time.Time
	hasDeadline bool
}

// refHeap is a min-heap of queued references ordered by deadline.
type refHeap []queuedRef

func (h refHeap) Len() int { return len(h) }

func (h refHeap) Less(i, j int) bool {
	if !h[i].hasDeadline {
		return false
	}
	if !h[j].hasDeadline {
		return true
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h refHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *refHeap) Push(x any) { *h = append(*h, x.(queuedRef)) }

func (h *refHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// refTracker maintains reference counts and the tiered eviction queue.
//
// Invariants: a resource's reference count equals the number of live Ref
// tokens for it, and a count of zero means the resource sits in the pending
// queue. Calling Activate or Deactivate for an unregistered handle is a
// programmer error and panics.
//
// refTracker is not safe for concurrent use; the Manager serializes access.
type refTracker struct {
	all     map[arena.Handle]*reference
	active  map[arena.Handle]struct{}
	pending refHeap
	epoch   uint64
}

func newRefTracker() *refTracker {
	return &refTracker{
		all:    make(map[arena.Handle]*reference),
		active: make(map[arena.Handle]struct{}),
	}
}

// Create registers the handle if unseen and activates it. Re-creating a
// known handle leaves its metadata untouched but still counts as an
// activation.
func (t *refTracker) Create(h arena.Handle, lifetime Lifetime) {
	if _, ok := t.all[h]; !ok {
		t.epoch++
		t.all[h] = &reference{handle: h, epoch: t.epoch, lifetime: lifetime}
	}
	t.Activate(h)
}

// Activate increments the reference count and keeps the handle in the
// active set.
func (t *refTracker) Activate(h arena.Handle) {
	ref, ok := t.all[h]
	if !ok {
		panic(fmt.Sprintf("resource: handle %d activated before it was created", h))
	}
	ref.count++
	t.active[h] = struct{}{}
}

// Deactivate decrements the reference count. When the count reaches zero
// the handle leaves the active set and is queued for destruction at
// now + delay(lifetime).
func (t *refTracker) Deactivate(h arena.Handle, now time.Time) {
	ref, ok := t.all[h]
	if !ok {
		panic(fmt.Sprintf("resource: handle %d released before it was created", h))
	}
	if ref.count == 0 {
		panic(fmt.Sprintf("resource: handle %d released more times than acquired", h))
	}
	ref.count--
	if ref.count > 0 {
		return
	}

	delete(t.active, h)
	entry := queuedRef{handle: h, epoch: ref.epoch}
	if delay, ok := ref.lifetime.Delay(); ok {
		entry.deadline = now.Add(delay)
		entry.hasDeadline = true
	}
	heap.Push(&t.pending, entry)
}

// Upkeep pops every queue entry whose deadline has elapsed and whose handle
// is not active, unregisters those handles and returns them for actual
// destruction by the caller. Stale entries for handles that were reactivated
// after queueing are discarded without effect.
func (t *refTracker) Upkeep(now time.Time) []arena.Handle {
	var expired []arena.Handle
	for len(t.pending) > 0 {
		top := t.pending[0]
		if !top.hasDeadline || top.deadline.After(now) {
			break
		}
		heap.Pop(&t.pending)
		if _, live := t.active[top.handle]; live {
			continue
		}
		// An entry can outlive its resource: the handle may be gone, or
		// recycled for a new resource with a fresh epoch. Either way the
		// entry is stale and must not destroy anything.
		ref, known := t.all[top.handle]
		if !known || ref.epoch != top.epoch {
			continue
		}
		delete(t.all, top.handle)
		expired = append(expired, top.handle)
	}
	return expired
}

// Count returns the current reference count for h, or 0 for unknown handles.
func (t *refTracker) Count(h arena.Handle) uint64 {
	if ref, ok := t.all[h]; ok {
		return ref.count
	}
	return 0
}
