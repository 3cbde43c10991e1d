// Package kernel is the public surface of the reactive dataflow kernel: a
// priority-ordered, reentrancy-safe scheduler that propagates values
// through a directed graph of compiled Nodes.
//
// Everything a graph compiler, an effect/event/store API, or a scope-fork
// mechanism needs to drive the kernel is exported here. Building any of
// those things is left to the caller; the graph compiler's single seam
// into the kernel is SetGraphResolver.
package kernel

import "github.com/AnatoleLucet/kernel/internal"

// Re-exported data model. A graph compiler constructs these directly.
type (
	Node        = internal.Node
	NodeMeta    = internal.NodeMeta
	Step        = internal.Step
	StepKind    = internal.StepKind
	MovSide     = internal.MovSide
	MovData     = internal.MovData
	ComputeData = internal.ComputeData
	ComputeFn   = internal.ComputeFn
	Order       = internal.Order

	StateRef     = internal.StateRef
	DeriveCommand = internal.DeriveCommand
	MapCommand   = internal.MapCommand
	FieldCommand = internal.FieldCommand
	Leaf         = internal.Leaf
	Scope        = internal.Scope
	ScopeValues  = internal.ScopeValues

	Stack      = internal.Stack
	LocalFrame = internal.LocalFrame
	Queue      = internal.Queue
	Layer      = internal.Layer

	LaunchConfig = internal.LaunchConfig
	Inspector    = internal.Inspector

	PriorityTag = internal.PriorityTag
)

// Seq is the ordered append-only container backing Node.Next and
// Scope.AdditionalLinks entries.
type Seq[T any] = internal.Seq[T]

const (
	PriorityChild   = internal.PriorityChild
	PriorityPure    = internal.PriorityPure
	PriorityRead    = internal.PriorityRead
	PriorityBarrier = internal.PriorityBarrier
	PrioritySampler = internal.PrioritySampler
	PriorityEffect  = internal.PriorityEffect
)

const (
	StepMov     = internal.StepMov
	StepCompute = internal.StepCompute
)

const (
	SideStack = internal.SideStack
	SideA     = internal.SideA
	SideB     = internal.SideB
	SideValue = internal.SideValue
	SideStore = internal.SideStore
)

// NewLeaf creates an empty page under parent (parent may be nil for a root
// page).
func NewLeaf(fullID string, parent *Leaf) *Leaf { return internal.NewLeaf(fullID, parent) }

// NewScope creates an empty fork.
func NewScope() *Scope { return internal.NewScope() }

// NewQueue creates an empty scheduler queue.
func NewQueue() *Queue { return internal.NewQueue() }

// NewNodeSeq builds the Next set of a Node from a fixed list of successors.
func NewNodeSeq(nodes ...*Node) *Seq[*Node] { return internal.NewSeq(nodes...) }

// NewSeq builds a Seq from a fixed set of initial items, e.g. for a
// Scope.AdditionalLinks entry.
func NewSeq[T any](items ...T) *Seq[T] { return internal.NewSeq(items...) }

// SeqAdd appends x to xs, preserving arrival order.
func SeqAdd[T any](xs *Seq[T], x T) { internal.Add(xs, x) }

// SeqForEach iterates xs in order.
func SeqForEach[T any](xs *Seq[T], f func(T)) { internal.ForEach(xs, f) }

// GetKernel returns the calling goroutine's kernel, creating one on first
// use.
func GetKernel() *internal.Kernel { return internal.GetKernel() }

// Launch is the object-form calling convention. It runs against the
// calling goroutine's kernel.
func Launch(cfg LaunchConfig) { GetKernel().Launch(cfg) }

// LaunchUnit is the (unit, payload, upsert) calling convention. It runs
// against the calling goroutine's kernel.
func LaunchUnit(unit any, payload any, upsert bool) {
	GetKernel().LaunchUnit(unit, payload, upsert)
}

// SetGraphResolver installs the graph compiler's unit→Node mapping on the
// calling goroutine's kernel.
func SetGraphResolver(resolve func(unit any) *Node) {
	GetKernel().SetGraphResolver(resolve)
}

// SetForkPage sets the calling goroutine's kernel's ambient fork page, for
// test and introspection harnesses.
func SetForkPage(s *Scope) { GetKernel().SetForkPage(s) }

// SetCurrentPage sets the calling goroutine's kernel's ambient current
// page, for test and introspection harnesses.
func SetCurrentPage(p *Leaf) { GetKernel().SetCurrentPage(p) }

// SetInspector installs the calling goroutine's kernel's per-step observer.
func SetInspector(insp Inspector) { GetKernel().SetInspector(insp) }

// SetDiagnosticHandler installs the calling goroutine's kernel's sink for
// unsafe compute-step panics.
func SetDiagnosticHandler(h internal.DiagnosticHandler) {
	GetKernel().SetDiagnosticHandler(h)
}

// GetValue returns the canonical current value of an activation.
func GetValue(stack *Stack) any { return internal.GetValue(stack) }

// ReadRef returns a state ref's current value.
func ReadRef(ref *StateRef) any { return internal.ReadRef(ref) }

// GetPageForRef walks page's parent chain and returns the nearest page
// whose registry owns id, or nil.
func GetPageForRef(page *Leaf, id any) *Leaf { return internal.GetPageForRef(page, id) }

// GetPageRef resolves ref to the correct storage cell.
func GetPageRef(page *Leaf, scope *Scope, ref *StateRef, isGetState bool) *StateRef {
	return internal.GetPageRef(page, scope, ref, isGetState)
}

// InitRefInScope idempotently materializes a scope-local overlay of ref.
func InitRefInScope(scope *Scope, ref *StateRef, isGetState, isKernelCall, softRead bool) {
	internal.InitRefInScope(scope, ref, isGetState, isKernelCall, softRead)
}
