package internal

// Stack is a per-activation record: a singly-linked chain back to the
// activation that scheduled it, plus scratch registers and the page/scope
// overlay in effect for this activation. Distinct activations of the same
// node never share a Stack, so priority-induced interleaving between two
// runs of one node cannot stomp on each other's scratch cells.
type Stack struct {
	Node   *Node
	Parent *Stack
	Value  any
	A, B   any
	Page   *Leaf
	Scope  *Scope
	Meta   map[string]any
}

// LocalFrame is the per-runStep local state: whether the node's execution
// failed, why, and the node's own scope bag (exposed to user functions as
// their scope parameter; unrelated to *Scope).
type LocalFrame struct {
	Fail       bool
	FailReason any
	Scope      any
}

// GetValue returns the canonical current value of an activation.
func GetValue(stack *Stack) any {
	return stack.Value
}

// ReadRef returns a state ref's current value.
func ReadRef(ref *StateRef) any {
	return ref.Current
}

// GetForkPage extracts the scope in effect for a stack. Stacks created by
// the launch front-end or by successor scheduling always carry the scope
// they were forked under, so this is a plain field read, not a search.
func GetForkPage(stack *Stack) *Scope {
	if stack == nil {
		return nil
	}
	return stack.Scope
}
