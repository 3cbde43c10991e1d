package internal

// LaunchConfig is the object form of launch. A Target of type []any is a
// batch and needs a []any Params of the same length; any other Target is a
// single unit with Params as its payload.
type LaunchConfig struct {
	Target any
	Params any
	Defer  bool
	Queue  *Queue
	Page   *Leaf
	Scope  *Scope
	Stack  *Stack
	Meta   map[string]any
}

func normalizeTargets(target, params any) ([]any, []any) {
	if targets, ok := target.([]any); ok {
		values, ok := params.([]any)
		if !ok {
			panic("kernel: launch target is a batch but params is not")
		}
		if len(values) != len(targets) {
			panic("kernel: launch target/params length mismatch")
		}
		return targets, values
	}

	return []any{target}, []any{params}
}

// Launch is the object-form calling convention. It normalizes
// target/payload, resolves queue reuse vs. creation, seeds one
// pure-priority root item per target, and either enters the drain loop or
// (for a deferred launch nested inside a running drain) returns
// immediately, letting the outer drain pick the new items up.
func (k *Kernel) Launch(cfg LaunchConfig) {
	targets, payloads := normalizeTargets(cfg.Target, cfg.Params)

	forkPageForLaunch := cfg.Scope
	if forkPageForLaunch == nil {
		forkPageForLaunch = k.ForkPage
	}

	pageForLaunch := cfg.Page
	if pageForLaunch == nil {
		pageForLaunch = k.CurrentPage
	}

	// A nested launch into a different scope must not inherit the outer
	// one.
	if cfg.Scope != nil && k.ForkPage != nil && cfg.Scope != k.ForkPage {
		k.ForkPage = nil
	}

	var q *Queue
	switch {
	case cfg.Queue != nil:
		q = cfg.Queue
	case cfg.Defer && k.Queue != nil:
		q = k.Queue
	default:
		q = NewQueue()
	}

	for i, unit := range targets {
		if k.GraphResolver == nil {
			panic("kernel: no graph resolver installed; call SetGraphResolver first")
		}
		node := k.GraphResolver(unit)
		q.PushFirstHeapItem(node, payloads[i], cfg.Stack, pageForLaunch, forkPageForLaunch, cfg.Meta, PriorityPure)
	}

	if cfg.Defer && !k.IsRoot {
		return
	}

	k.Drain(q)
}

// LaunchUnit is the (unit, payload, upsert) calling convention.
func (k *Kernel) LaunchUnit(unit any, payload any, upsert bool) {
	k.Launch(LaunchConfig{Target: unit, Params: payload, Defer: upsert})
}
