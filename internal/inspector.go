package internal

// Inspector observes a node activation's step loop after it completes,
// fails, or is filtered. It never fires for a layer that a step's priority
// order deferred (re-enqueued, or dropped as a duplicate barrier arrival),
// even when earlier steps of the node had already run.
type Inspector func(stack *Stack, local *LocalFrame)

// SetInspector installs insp as this kernel's single observer, replacing
// whatever was set before. Passing nil clears it.
func (k *Kernel) SetInspector(insp Inspector) {
	k.Inspector = insp
}
