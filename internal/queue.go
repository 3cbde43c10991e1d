package internal

// Layer is a queued intent to run a node: which step index to resume at,
// the activation to run it against, the priority bucket it is waiting in,
// and (for barrier/sampler layers) its heap tie-breaker id.
//
// A Layer is intrusive storage for both a FIFO bucket (Next) and the shared
// skew heap (Left/Right): the linkage pointers live on the item itself
// rather than in a separate wrapper node.
type Layer struct {
	Idx   int
	Stack *Stack
	Type  PriorityTag
	ID    int

	// FIFO bucket linkage (buckets child, pure, read, effect).
	Next *Layer

	// Skew heap linkage (shared by buckets barrier, sampler).
	Left, Right *Layer
}

type fifoBucket struct {
	first, last *Layer
	size        int
}

func (b *fifoBucket) push(layer *Layer) {
	layer.Next = nil
	if b.last != nil {
		b.last.Next = layer
	} else {
		b.first = layer
	}
	b.last = layer
	b.size++
}

func (b *fifoBucket) pop() *Layer {
	layer := b.first
	b.first = layer.Next
	if b.first == nil {
		b.last = nil
	}
	layer.Next = nil
	b.size--
	return layer
}

// BarrierKey identifies a join point for de-duplication: 0 with no
// BarrierID, "<page.FullID>_<id>" under a page, or the bare id otherwise.
type BarrierKey any

// Queue is the hybrid scheduler: FIFO buckets for child/pure/read/effect,
// one skew heap shared by barrier/sampler, and the barrier de-duplication
// set. Not safe for concurrent use. Exactly one drain owns a Queue at a
// time.
type Queue struct {
	fifo     [priorityBucketCount]fifoBucket
	heap     *Layer
	heapSize [priorityBucketCount]int

	Barriers map[BarrierKey]struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		Barriers: make(map[BarrierKey]struct{}),
	}
}

// PushFirstHeapItem creates a fresh activation for node/payload and
// enqueues it at the given priority, idx 0, id 0. This is the root-item
// seeding step of a launch, named for the one entry point regardless of
// which bucket the item actually lands in.
func (q *Queue) PushFirstHeapItem(node *Node, payload any, parent *Stack, page *Leaf, scope *Scope, meta map[string]any, priority PriorityTag) *Stack {
	stack := &Stack{
		Node:   node,
		Parent: parent,
		Value:  payload,
		Page:   page,
		Scope:  scope,
		Meta:   meta,
	}
	q.PushHeap(0, stack, priority, 0)
	return stack
}

// PushHeap is the single generic enqueue entry point, dispatching to a
// FIFO bucket or the shared skew heap by typ.
func (q *Queue) PushHeap(idx int, stack *Stack, typ PriorityTag, id int) {
	layer := &Layer{Idx: idx, Stack: stack, Type: typ, ID: id}

	if typ.isHeapBucket() {
		q.heap = mergeHeap(q.heap, layer)
		q.heapSize[typ]++
		return
	}

	q.fifo[typ].push(layer)
}

// DeleteMin scans buckets 0..5 in order and pops the first non-empty one.
// Buckets 3/4 share one heap: since barrier (3) always sorts before sampler
// (4), checking heapSize[PriorityBarrier] before popping the shared root is
// enough to know which type is about to come off.
func (q *Queue) DeleteMin() (*Layer, bool) {
	for t := PriorityTag(0); t < priorityBucketCount; t++ {
		if t.isHeapBucket() {
			if q.heapSize[t] == 0 {
				continue
			}
			layer := q.heap
			q.heap = mergeHeap(layer.Left, layer.Right)
			layer.Left, layer.Right = nil, nil
			q.heapSize[t]--
			return layer, true
		}

		b := &q.fifo[t]
		if b.size == 0 {
			continue
		}
		return b.pop(), true
	}

	return nil, false
}
