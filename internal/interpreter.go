package internal

import "strconv"

// StepOutcome is what RunStep did with the layer it was given.
type StepOutcome int

const (
	// OutcomeCompleted means every step ran; successors should be scheduled.
	OutcomeCompleted StepOutcome = iota
	// OutcomeFailed means an unsafe compute step panicked; no successors.
	OutcomeFailed
	// OutcomeSkipped means a filter step returned falsy; no successors.
	OutcomeSkipped
	// OutcomeDeferred means a step's priority order sent the layer back to
	// the queue at that priority/id, or dropped it because the same barrier
	// key is already pending; the drain should just move on.
	OutcomeDeferred
)

// RunStep executes layer.Stack.Node's step sequence starting at layer.Idx,
// enforcing any per-step priority requirement along the way. It returns the
// outcome and the local frame; the frame is nil on OutcomeDeferred, also
// when earlier steps of the node ran before a later ordered step deferred.
func RunStep(k *Kernel, layer *Layer) (StepOutcome, *LocalFrame) {
	stack := layer.Stack
	node := stack.Node
	local := &LocalFrame{Scope: node.Scope}

	startIdx := layer.Idx

	for idx := startIdx; idx < len(node.Seq); idx++ {
		step := node.Seq[idx]

		if step.Order != nil {
			if idx != startIdx || layer.Type != step.Order.Priority {
				deferStep(k, step.Order, idx, stack)
				return OutcomeDeferred, nil
			}
			if step.Order.BarrierID != nil {
				delete(k.Queue.Barriers, barrierKeyFor(stack.Page, step.Order.BarrierID))
			}
		}

		switch step.Kind {
		case StepMov:
			execMov(k, step.Mov, stack)

		case StepCompute:
			outcome := execCompute(k, step.Compute, stack, local, node)
			if outcome != OutcomeCompleted {
				return outcome, local
			}
		}
	}

	return OutcomeCompleted, local
}

// deferStep re-enqueues the current layer's remaining work at the step's
// declared priority. A BarrierID-bearing step (barrier or sampler) collapses
// concurrent arrivals via the queue's Barriers set and keeps its
// compile-time id as the heap tie-breaker; any other ordered step always
// re-enqueues at id 0.
func deferStep(k *Kernel, order *Order, idx int, stack *Stack) {
	if order.BarrierID == nil {
		k.Queue.PushHeap(idx, stack, order.Priority, 0)
		return
	}

	key := barrierKeyFor(stack.Page, order.BarrierID)
	if _, pending := k.Queue.Barriers[key]; pending {
		return
	}
	k.Queue.Barriers[key] = struct{}{}
	k.Queue.PushHeap(idx, stack, order.Priority, *order.BarrierID)
}

func barrierKeyFor(page *Leaf, barrierID *int) BarrierKey {
	if barrierID == nil {
		return BarrierKey(0)
	}
	if page != nil {
		return BarrierKey(page.FullID + "_" + strconv.Itoa(*barrierID))
	}
	return BarrierKey(*barrierID)
}

// execMov executes a mov step: read from the source side, write to the
// destination side. Reading from the store side may mutate stack.Page as a
// side effect of resolution; that mutation must stay visible to subsequent
// steps in the same node.
func execMov(k *Kernel, m MovData, stack *Stack) {
	var value any

	switch m.From {
	case SideStack:
		value = stack.Value
	case SideA:
		value = stack.A
	case SideB:
		value = stack.B
	case SideValue:
		value = m.Literal
	case SideStore:
		value = readStoreSide(k, m, stack)
	}

	switch m.To {
	case SideStack:
		stack.Value = value
	case SideA:
		stack.A = value
	case SideB:
		stack.B = value
	case SideStore:
		target := GetPageRef(stack.Page, GetForkPage(stack), m.Target, false)
		target.Current = value
	}
}

func readStoreSide(k *Kernel, m MovData, stack *Stack) any {
	ref := m.StoreRef
	reg := currentReg(stack, k)

	if reg == nil || !regHas(reg, ref.ID) {
		if p := GetPageForRef(stack.Page, ref.ID); p != nil {
			stack.Page = p
		} else if k.ForkPage != nil {
			InitRefInScope(k.ForkPage, ref, false, true, m.SoftRead)
		}
	}

	return ReadRef(GetPageRef(stack.Page, GetForkPage(stack), ref, false))
}

func currentReg(stack *Stack, k *Kernel) map[StateRefID]*StateRef {
	if stack.Page != nil {
		return stack.Page.Reg
	}
	if k.ForkPage != nil {
		return k.ForkPage.Reg
	}
	return nil
}

func regHas(reg map[StateRefID]*StateRef, id StateRefID) bool {
	_, ok := reg[id]
	return ok
}

// execCompute executes a compute step: invoke fn (safely or not), then
// apply filter or plain-assignment semantics to the result.
func execCompute(k *Kernel, c ComputeData, stack *Stack, local *LocalFrame, node *Node) StepOutcome {
	if c.Fn == nil {
		return OutcomeCompleted
	}

	prevWatch, prevPure := k.IsWatch, k.IsPure
	k.IsWatch = node.Meta.Op == "watch"
	k.IsPure = c.Pure
	defer func() {
		k.IsWatch, k.IsPure = prevWatch, prevPure
	}()

	var result any
	if c.Safe {
		result = c.Fn(GetValue(stack), local.Scope, stack, k.Queue)
	} else {
		var ok bool
		result, ok = tryRun(k, c.Fn, stack, local)
		if !ok {
			return OutcomeFailed
		}
	}

	if c.Filter {
		if isFalsy(result) {
			return OutcomeSkipped
		}
		return OutcomeCompleted
	}

	stack.Value = result
	return OutcomeCompleted
}

// tryRun invokes fn, recovering a panic into local.Fail/local.FailReason and
// the kernel's diagnostic sink rather than letting it unwind the drain.
func tryRun(k *Kernel, fn ComputeFn, stack *Stack, local *LocalFrame) (result any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			local.Fail = true
			local.FailReason = r
			ok = false
			k.diagnostics(stack, r)
		}
	}()

	result = fn(GetValue(stack), local.Scope, stack, k.Queue)
	ok = true
	return
}
