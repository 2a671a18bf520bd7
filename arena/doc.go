// Package arena provides a fixed-capacity sparse-set container that maps
// stable integer handles to values with O(1) insert, remove and lookup.
//
// The arena is the storage primitive underneath the resource manager and
// every handle-keyed registry in framegraph. Removal uses swap-remove: the
// last dense element is moved into the freed slot, so the dense array stays
// contiguous and iteration over live elements is O(n).
//
// Capacity is fixed at construction. An arena never resizes; exceeding the
// configured capacity is a configuration mistake and panics.
package arena
