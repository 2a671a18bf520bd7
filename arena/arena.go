package arena

import "fmt"

// Handle identifies one slot in an Arena. Handles are plain indices into the
// sparse array; they are stable for the lifetime of the element and are never
// reinterpreted for an unrelated element while the element is live.
type Handle uint32

// Arena is a sparse-set container with fixed capacity.
//
// The sparse array maps a Handle to an index into the dense arrays; the dense
// arrays hold the live handles and their values packed contiguously. A sparse
// entry equal to the tombstone marks a free slot.
//
// Arena is not safe for concurrent use; callers synchronize externally.
type Arena[T any] struct {
	sparse    []uint32
	dense     []Handle
	values    []T
	tombstone uint32
}

// New creates an arena that can hold up to capacity elements with handle
// indices in [0, capacity). Capacity is fixed; New panics if it is not
// positive.
func New[T any](capacity int) *Arena[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("arena: invalid capacity %d", capacity))
	}

	a := &Arena[T]{
		sparse:    make([]uint32, capacity),
		dense:     make([]Handle, 0, capacity),
		values:    make([]T, 0, capacity),
		tombstone: uint32(capacity),
	}
	for i := range a.sparse {
		a.sparse[i] = a.tombstone
	}
	return a
}

// Insert stores value under h and returns a pointer to the stored element.
// Inserting an existing handle is idempotent: the stored value is left
// untouched and a pointer to it is returned.
//
// Insert panics if h is outside the arena's handle range. The capacity check
// is implicit: a full arena has no free handle indices left.
func (a *Arena[T]) Insert(h Handle, value T) *T {
	if uint32(h) >= a.tombstone {
		panic(fmt.Sprintf("arena: handle %d out of range (capacity %d)", h, a.tombstone))
	}

	if !a.Contains(h) {
		a.sparse[h] = uint32(len(a.dense))
		a.dense = append(a.dense, h)
		a.values = append(a.values, value)
	}
	return &a.values[a.sparse[h]]
}

// Remove deletes the element stored under h and returns it. The second
// return value reports whether the handle was live. Removal is O(1): the
// last dense element is swapped into the freed slot and its sparse entry is
// patched.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	var zero T
	if !a.Contains(h) {
		return zero, false
	}

	idx := a.sparse[h]
	last := uint32(len(a.dense) - 1)
	moved := a.dense[last]

	a.dense[idx] = moved
	a.values[idx], a.values[last] = a.values[last], a.values[idx]
	a.sparse[moved] = idx
	a.sparse[h] = a.tombstone

	value := a.values[last]
	a.values[last] = zero
	a.dense = a.dense[:last]
	a.values = a.values[:last]
	return value, true
}

// Get returns a pointer to the element stored under h, or (nil, false) for
// unknown or removed handles.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if !a.Contains(h) {
		return nil, false
	}
	return &a.values[a.sparse[h]], true
}

// Contains reports whether h refers to a live element.
func (a *Arena[T]) Contains(h Handle) bool {
	return uint32(h) < a.tombstone && a.sparse[h] != a.tombstone
}

// Handles returns all live handles. The order follows the dense array, which
// is insertion order disturbed only by swap-removes.
func (a *Arena[T]) Handles() []Handle {
	out := make([]Handle, len(a.dense))
	copy(out, a.dense)
	return out
}

// Len returns the number of live elements.
func (a *Arena[T]) Len() int {
	return len(a.dense)
}

// Capacity returns the fixed maximum element count.
func (a *Arena[T]) Capacity() int {
	return int(a.tombstone)
}

// Clear removes all elements without releasing the backing arrays.
func (a *Arena[T]) Clear() {
	for i := range a.sparse {
		a.sparse[i] = a.tombstone
	}
	a.dense = a.dense[:0]
	a.values = a.values[:0]
}
