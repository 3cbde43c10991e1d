package internal

// heapLess reports whether a keeps priority over b: lower PriorityTag wins,
// ties broken by the lower ID.
func heapLess(a, b *Layer) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.ID <= b.ID
}

// mergeHeap merges two skew heaps rooted at a and b, mutating their Left/
// Right pointers, and returns the new root. Standard skew-heap merge: pick
// the winning root by heapLess, merge the loser into the winner's right
// child, then swap the winner's children.
func mergeHeap(a, b *Layer) *Layer {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	if !heapLess(a, b) {
		a, b = b, a
	}

	a.Right = mergeHeap(a.Right, b)
	a.Left, a.Right = a.Right, a.Left

	return a
}
