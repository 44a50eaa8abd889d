package streamgraph

// ScopeGuard wraps a deferred finalize action that runs at most once.
// The zero value holds no action and is a no-op. A guard may be returned
// by value; the caller that ends up holding it is responsible for running
// it, typically via defer:
//
//	guard, err := handle.CaptureGuard(stream)
//	if err != nil {
//		return err
//	}
//	defer guard.Run()
//
// A guard must have a single owner. Copying an armed guard and running
// both copies runs the action twice.
type ScopeGuard struct {
	action func() error
}

// NewScopeGuard returns a guard holding action.
func NewScopeGuard(action func() error) ScopeGuard {
	return ScopeGuard{action: action}
}

// Run executes the held action and disarms the guard, returning the
// action's error. Running a disarmed or zero guard is a no-op.
func (g *ScopeGuard) Run() error {
	if g.action == nil {
		return nil
	}
	action := g.action
	g.action = nil
	return action()
}

// Disarm drops the held action without running it.
func (g *ScopeGuard) Disarm() {
	g.action = nil
}

// Armed reports whether the guard still holds an action.
func (g *ScopeGuard) Armed() bool {
	return g.action != nil
}
