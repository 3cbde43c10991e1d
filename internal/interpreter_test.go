package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func runNodeOnFreshQueue(k *Kernel, node *Node, value any) *Queue {
	q := NewQueue()
	q.PushFirstHeapItem(node, value, nil, nil, nil, nil, PriorityPure)
	k.Drain(q)
	return q
}

func TestRunStep(t *testing.T) {
	t.Run("mov and compute steps chain through a single activation", func(t *testing.T) {
		node := &Node{
			Seq: []Step{
				{Kind: StepMov, Mov: MovData{From: SideStack, To: SideA}},
				{Kind: StepCompute, Compute: ComputeData{
					Safe: true,
					Fn: func(value any, _ any, stack *Stack, _ *Queue) any {
						return stack.A.(int) + value.(int)
					},
				}},
			},
		}

		var seen int
		node.Next = NewSeq(&Node{
			Seq: []Step{{Kind: StepCompute, Compute: ComputeData{
				Safe: true,
				Fn: func(value any, _ any, _ *Stack, _ *Queue) any {
					seen = value.(int)
					return value
				},
			}}},
		})

		k := NewKernel()
		runNodeOnFreshQueue(k, node, 3)

		assert.Equal(t, 6, seen)
	})

	t.Run("a filter step that returns falsy stops propagation", func(t *testing.T) {
		downstream := &Node{Seq: []Step{{Kind: StepCompute, Compute: ComputeData{
			Safe: true,
			Fn: func(_ any, _ any, _ *Stack, _ *Queue) any {
				t.Fatal("downstream node must not run")
				return nil
			},
		}}}}

		node := &Node{
			Seq: []Step{{Kind: StepCompute, Compute: ComputeData{
				Safe:   true,
				Filter: true,
				Fn: func(value any, _ any, _ *Stack, _ *Queue) any {
					return value.(int) > 0
				},
			}}},
			Next: NewSeq(downstream),
		}

		k := NewKernel()
		runNodeOnFreshQueue(k, node, -1)
	})

	t.Run("a filter step that returns truthy lets propagation continue", func(t *testing.T) {
		var got int
		downstream := &Node{Seq: []Step{{Kind: StepCompute, Compute: ComputeData{
			Safe: true,
			Fn: func(value any, _ any, _ *Stack, _ *Queue) any {
				got = value.(int)
				return value
			},
		}}}}

		node := &Node{
			Seq: []Step{{Kind: StepCompute, Compute: ComputeData{
				Safe:   true,
				Filter: true,
				Fn: func(value any, _ any, _ *Stack, _ *Queue) any {
					return value.(int) > 0
				},
			}}},
			Next: NewSeq(downstream),
		}

		k := NewKernel()
		runNodeOnFreshQueue(k, node, 1)

		assert.Equal(t, 1, got)
	})

	t.Run("an unsafe compute step's panic is recovered and reported, not propagated", func(t *testing.T) {
		downstream := &Node{Seq: []Step{{Kind: StepCompute, Compute: ComputeData{
			Safe: true,
			Fn: func(_ any, _ any, _ *Stack, _ *Queue) any {
				t.Fatal("downstream node must not run after a failed unsafe step")
				return nil
			},
		}}}}

		node := &Node{
			Seq: []Step{{Kind: StepCompute, Compute: ComputeData{
				Safe: false,
				Fn: func(_ any, _ any, _ *Stack, _ *Queue) any {
					panic("boom")
				},
			}}},
			Next: NewSeq(downstream),
		}

		var reportedStack *Stack
		var reportedReason any
		k := NewKernel()
		k.SetDiagnosticHandler(func(stack *Stack, reason any) {
			reportedStack = stack
			reportedReason = reason
		})

		runNodeOnFreshQueue(k, node, 1)

		assert.Equal(t, "boom", reportedReason)
		assert.NotNil(t, reportedStack)
	})

	t.Run("a step ordered at a different priority than the current layer defers itself", func(t *testing.T) {
		var ran []string
		effect := &Node{Seq: []Step{
			{Kind: StepCompute, Order: &Order{Priority: PriorityEffect}, Compute: ComputeData{
				Safe: true,
				Fn: func(_ any, _ any, _ *Stack, _ *Queue) any {
					ran = append(ran, "effect")
					return nil
				},
			}},
		}}

		k := NewKernel()
		q := NewQueue()
		// Seeded at pure priority (as every fresh launch is); the node's
		// first step demands effect priority, so it must defer rather than
		// run inline.
		q.PushFirstHeapItem(effect, nil, nil, nil, nil, nil, PriorityPure)
		k.Drain(q)

		assert.Equal(t, []string{"effect"}, ran)
	})
}

func TestSamplerOrdersByCompileTimeID(t *testing.T) {
	t.Run("a lower compile-time id runs before a higher one at the same priority", func(t *testing.T) {
		xID, yID := 10, 3
		var order []string

		x := &Node{Seq: []Step{{Kind: StepCompute, Order: &Order{Priority: PrioritySampler, BarrierID: &xID}, Compute: ComputeData{
			Safe: true,
			Fn: func(_ any, _ any, _ *Stack, _ *Queue) any {
				order = append(order, "x")
				return nil
			},
		}}}}
		y := &Node{Seq: []Step{{Kind: StepCompute, Order: &Order{Priority: PrioritySampler, BarrierID: &yID}, Compute: ComputeData{
			Safe: true,
			Fn: func(_ any, _ any, _ *Stack, _ *Queue) any {
				order = append(order, "y")
				return nil
			},
		}}}}

		k := NewKernel()
		q := NewQueue()
		// Both seeded at pure priority, as a fresh launch does; each defers
		// itself into the shared heap under its own id on first run.
		q.PushFirstHeapItem(x, nil, nil, nil, nil, nil, PriorityPure)
		q.PushFirstHeapItem(y, nil, nil, nil, nil, nil, PriorityPure)
		k.Drain(q)

		assert.Equal(t, []string{"y", "x"}, order)
	})
}

func TestBarrierDeduplication(t *testing.T) {
	t.Run("two arrivals at the same barrier collapse into one execution", func(t *testing.T) {
		barrierID := 7
		var runs int
		join := &Node{Seq: []Step{
			{Kind: StepCompute, Order: &Order{Priority: PriorityBarrier, BarrierID: &barrierID}, Compute: ComputeData{
				Safe: true,
				Fn: func(_ any, _ any, _ *Stack, _ *Queue) any {
					runs++
					return nil
				},
			}},
		}}

		a := &Node{Next: NewSeq(join)}
		b := &Node{Next: NewSeq(join)}

		k := NewKernel()
		q := NewQueue()
		q.PushFirstHeapItem(a, 1, nil, nil, nil, nil, PriorityPure)
		q.PushFirstHeapItem(b, 2, nil, nil, nil, nil, PriorityPure)
		k.Drain(q)

		assert.Equal(t, 1, runs)
	})
}
