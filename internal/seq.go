package internal

import "iter"

// Seq is the ordered, append-only sequence container the spec's contracts
// forEach(xs, f) and add(xs, x) operate on. It backs Node.Next and
// Scope.AdditionalLinks entries.
type Seq[T any] struct {
	items []T
}

// NewSeq builds a Seq from a fixed set of initial items.
func NewSeq[T any](items ...T) *Seq[T] {
	return &Seq[T]{items: items}
}

// Add appends x to xs, preserving arrival order.
func Add[T any](xs *Seq[T], x T) {
	xs.items = append(xs.items, x)
}

// ForEach calls f on every item of xs, in order. A nil xs is a no-op.
func ForEach[T any](xs *Seq[T], f func(T)) {
	if xs == nil {
		return
	}
	for _, x := range xs.items {
		f(x)
	}
}

// Len reports how many items xs currently holds.
func (xs *Seq[T]) Len() int {
	if xs == nil {
		return 0
	}
	return len(xs.items)
}

// All returns an iter.Seq view over xs for range-over-func iteration.
func (xs *Seq[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if xs == nil {
			return
		}
		for _, x := range xs.items {
			if !yield(x) {
				return
			}
		}
	}
}
