package internal

// Kernel bundles a goroutine's ambient scheduling state (current page,
// fork page, watch/pure flags, the queue being drained, root-ness) into
// one struct passed down the drain.
type Kernel struct {
	Queue       *Queue
	CurrentPage *Leaf
	ForkPage    *Scope
	IsWatch     bool
	IsPure      bool
	IsRoot      bool

	Inspector     Inspector
	GraphResolver func(unit any) *Node
	diagnostics   DiagnosticHandler
}

// NewKernel creates a fresh kernel with no active drain. IsRoot starts
// true: a launch that happens before any drain is running is, by
// definition, at the root.
func NewKernel() *Kernel {
	return &Kernel{
		IsRoot:      true,
		diagnostics: defaultDiagnosticHandler,
	}
}

// SetForkPage sets the kernel's ambient fork page, for test and
// introspection harnesses.
func (k *Kernel) SetForkPage(s *Scope) {
	k.ForkPage = s
}

// SetCurrentPage sets the kernel's ambient current page, for test and
// introspection harnesses.
func (k *Kernel) SetCurrentPage(p *Leaf) {
	k.CurrentPage = p
}

// SetGraphResolver installs the mapping from a user-facing unit to its
// compiled node.
func (k *Kernel) SetGraphResolver(resolve func(unit any) *Node) {
	k.GraphResolver = resolve
}

type ambientSnapshot struct {
	isRoot      bool
	currentPage *Leaf
	forkPage    *Scope
	isWatch     bool
	isPure      bool
	queue       *Queue
}

func (k *Kernel) snapshotAmbient() ambientSnapshot {
	return ambientSnapshot{
		isRoot:      k.IsRoot,
		currentPage: k.CurrentPage,
		forkPage:    k.ForkPage,
		isWatch:     k.IsWatch,
		isPure:      k.IsPure,
		queue:       k.Queue,
	}
}

func (k *Kernel) restoreAmbient(s ambientSnapshot) {
	k.IsRoot = s.isRoot
	k.CurrentPage = s.currentPage
	k.ForkPage = s.forkPage
	k.IsWatch = s.isWatch
	k.IsPure = s.isPure
	k.Queue = s.queue
}

// Drain owns the drain loop: pop a layer, run it, schedule its successors,
// repeat until the queue is empty. Ambient state is snapshotted on entry
// and restored on exit so a reentrant launch nested inside a compute step
// cannot leak its ambient context back out.
func (k *Kernel) Drain(q *Queue) {
	snap := k.snapshotAmbient()
	k.IsRoot = false
	k.Queue = q

	for {
		layer, ok := q.DeleteMin()
		if !ok {
			break
		}

		stack := layer.Stack
		k.CurrentPage = stack.Page
		k.ForkPage = GetForkPage(stack)

		outcome, local := RunStep(k, layer)

		if k.Inspector != nil && outcome != OutcomeDeferred {
			k.Inspector(stack, local)
		}

		if outcome == OutcomeCompleted {
			k.scheduleSuccessors(q, stack)
		}
	}

	k.restoreAmbient(snap)
}

// scheduleSuccessors enqueues child-priority layers for every node in
// node.Next plus, when a fork page is active, the node's registered
// counters/links.
func (k *Kernel) scheduleSuccessors(q *Queue, stack *Stack) {
	node := stack.Node
	value := GetValue(stack)

	ForEach(node.Next, func(child *Node) {
		q.PushHeap(0, childStack(stack, child, value), PriorityChild, 0)
	})

	forkPage := k.ForkPage
	if forkPage == nil {
		return
	}

	if node.Meta.NeedFxCounter && forkPage.FxCount != nil {
		q.PushHeap(0, childStack(stack, forkPage.FxCount, value), PriorityChild, 0)
	}
	if node.Meta.StoreChange && forkPage.StoreChange != nil {
		q.PushHeap(0, childStack(stack, forkPage.StoreChange, value), PriorityChild, 0)
	}
	if node.Meta.WarnSerialize && forkPage.WarnSerializeNode != nil {
		q.PushHeap(0, childStack(stack, forkPage.WarnSerializeNode, value), PriorityChild, 0)
	}
	if links, ok := forkPage.AdditionalLinks[node.ID]; ok {
		ForEach(links, func(n *Node) {
			q.PushHeap(0, childStack(stack, n, value), PriorityChild, 0)
		})
	}
}

func childStack(parent *Stack, node *Node, value any) *Stack {
	return &Stack{
		Node:   node,
		Parent: parent,
		Value:  value,
		Page:   parent.Page,
		Scope:  parent.Scope,
		Meta:   parent.Meta,
	}
}
