package internal

// NodeID identifies a compiled graph vertex. The graph compiler assigns it;
// the kernel only ever uses it as an opaque, comparable key (Scope's
// AdditionalLinks is keyed by it).
type NodeID any

// NodeMeta carries the handful of recognized keys the kernel driver
// consults after a node finishes: op, needFxCounter, storeChange and
// warnSerialize.
type NodeMeta struct {
	Op            string
	NeedFxCounter bool
	StoreChange   bool
	WarnSerialize bool
}

// Node is a compiled unit of work: an ordered step sequence, a successor
// list, node-local scope metadata handed to user functions, and meta flags.
// Immutable after construction. The kernel never mutates a Node.
type Node struct {
	ID    NodeID
	Seq   []Step
	Next  *Seq[*Node]
	Scope any
	Meta  NodeMeta
}

// StepKind tags the two-case Step union. Modeled as an enum plus two payload
// structs rather than an interface hierarchy.
type StepKind int

const (
	StepMov StepKind = iota
	StepCompute
)

// MovSide names one endpoint of a mov step: the activation's value/scratch
// cells, a literal, or the state-ref store.
type MovSide int

const (
	SideStack MovSide = iota
	SideA
	SideB
	SideValue
	SideStore
)

// Order attaches a scheduling requirement to a step: it must run at
// Priority, and if BarrierID is set, concurrent arrivals at this step
// collapse to one execution.
type Order struct {
	Priority  PriorityTag
	BarrierID *int
}

// MovData is the payload of a StepMov step. At most one of Literal/StoreRef
// is meaningful, selected by From (Literal for SideValue, StoreRef for
// SideStore); Target is meaningful only when To is SideStore.
type MovData struct {
	From     MovSide
	To       MovSide
	Literal  any
	StoreRef *StateRef
	Target   *StateRef
	SoftRead bool
}

// ComputeFn is a user callback invoked by a compute step: current value,
// the node's local scope bag, the activation, and the queue currently
// draining (so effect implementations can enqueue further work).
type ComputeFn func(value any, scope any, stack *Stack, effectorQueue *Queue) any

// ComputeData is the payload of a StepCompute step.
type ComputeData struct {
	Fn     ComputeFn
	Safe   bool
	Pure   bool
	Filter bool
}

// Step is the tagged union executed one at a time by the interpreter.
type Step struct {
	Kind    StepKind
	Order   *Order
	Mov     MovData
	Compute ComputeData
}
