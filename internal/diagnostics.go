package internal

// DiagnosticHandler receives a recovered panic from an unsafe compute step.
// It never propagates the error and never aborts the drain.
type DiagnosticHandler func(stack *Stack, reason any)

func defaultDiagnosticHandler(*Stack, any) {}

// SetDiagnosticHandler installs h as this kernel's diagnostic sink,
// replacing whatever was set before. Passing nil restores the no-op default.
func (k *Kernel) SetDiagnosticHandler(h DiagnosticHandler) {
	if h == nil {
		h = defaultDiagnosticHandler
	}
	k.diagnostics = h
}
