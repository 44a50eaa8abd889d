package streamgraph

import (
	"sync"
)

// captureStack tracks which handles own open capture sessions on a
// context, innermost last. Sessions must close in reverse order of
// opening; GraphHandle enforces that at finalize time. The stack does no
// device work, it is pure bookkeeping.
type captureStack struct {
	mu      sync.Mutex
	handles []*GraphHandle
}

func (cs *captureStack) push(h *GraphHandle) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.handles = append(cs.handles, h)
}

// pop removes and returns the innermost handle, or nil when no session
// is open.
func (cs *captureStack) pop() *GraphHandle {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.handles) == 0 {
		return nil
	}
	h := cs.handles[len(cs.handles)-1]
	cs.handles[len(cs.handles)-1] = nil
	cs.handles = cs.handles[:len(cs.handles)-1]
	return h
}

// current returns the innermost handle without removing it, or nil.
func (cs *captureStack) current() *GraphHandle {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.handles) == 0 {
		return nil
	}
	return cs.handles[len(cs.handles)-1]
}

func (cs *captureStack) depth() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.handles)
}
