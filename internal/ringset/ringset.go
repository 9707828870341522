// Package ringset provides a bounded FIFO set used to drive cache eviction.
package ringset

// RingSet is a fixed-capacity FIFO of unique keys.
//
// Pushing a key that is already present is a no-op and does not move it.
// Pushing a new key into a full set evicts the oldest key first.
// RingSet is not safe for concurrent use; callers hold their own lock.
type RingSet[T comparable] struct {
	ring     []T // circular buffer, len == capacity once full
	head     int // index of the oldest key
	size     int
	known    map[T]struct{}
	capacity int
}

// New creates a RingSet holding at most capacity keys.
// A capacity below 1 is treated as 1.
func New[T comparable](capacity int) *RingSet[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingSet[T]{
		ring:     make([]T, capacity),
		known:    make(map[T]struct{}, capacity),
		capacity: capacity,
	}
}

// Push appends key. If the set was full, the oldest key is removed and
// returned with ok=true. Pushing a known key changes nothing.
func (r *RingSet[T]) Push(key T) (evicted T, ok bool) {
	if r.Contains(key) {
		return evicted, false
	}

	if r.size == r.capacity {
		evicted, ok = r.pop()
	}

	tail := (r.head + r.size) % r.capacity
	r.ring[tail] = key
	r.size++
	r.known[key] = struct{}{}
	return evicted, ok
}

// pop removes the oldest key.
func (r *RingSet[T]) pop() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	key := r.ring[r.head]
	r.ring[r.head] = zero
	r.head = (r.head + 1) % r.capacity
	r.size--
	delete(r.known, key)
	return key, true
}

// Contains reports whether key is in the set.
func (r *RingSet[T]) Contains(key T) bool {
	_, ok := r.known[key]
	return ok
}

// Len returns the number of keys currently held.
func (r *RingSet[T]) Len() int {
	return r.size
}

// Cap returns the maximum number of keys.
func (r *RingSet[T]) Cap() int {
	return r.capacity
}

// Keys returns the keys from oldest to newest.
func (r *RingSet[T]) Keys() []T {
	out := make([]T, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.ring[(r.head+i)%r.capacity])
	}
	return out
}

// Clear removes every key.
func (r *RingSet[T]) Clear() {
	var zero T
	for i := range r.ring {
		r.ring[i] = zero
	}
	r.head = 0
	r.size = 0
	r.known = make(map[T]struct{}, r.capacity)
}
