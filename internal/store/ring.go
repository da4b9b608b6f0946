package store

// Ring is a fixed-capacity, most-recent-first list. Pushing onto a full ring
// drops the oldest entry.
type Ring[T any] struct {
	items []T
	cap   int
}

// NewRing creates a ring holding at most capacity items. Capacity below one is
// treated as one.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, 0, capacity), cap: capacity}
}

// Push prepends v, evicting from the tail when full.
func (r *Ring[T]) Push(v T) {
	if len(r.items) < r.cap {
		r.items = append(r.items, v)
	}
	copy(r.items[1:], r.items[:len(r.items)-1])
	r.items[0] = v
}

// Items returns a copy of the contents, newest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Len reports the number of stored items.
func (r *Ring[T]) Len() int { return len(r.items) }

// Cap reports the capacity.
func (r *Ring[T]) Cap() int { return r.cap }
