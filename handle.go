package streamgraph

import (
	"errors"
	"log/slog"
	"sync"
)

// GraphHandle owns at most one recorded Graph and at most one compiled
// ExecGraph at a time. A handle captures on at most one stream at a
// time and is not safe for concurrent capture sessions from multiple
// goroutines.
type GraphHandle struct {
	ctx *Context

	mu          sync.Mutex
	graph       *Graph
	instance    *ExecGraph
	syncPending bool
}

// NewGraphHandle returns an empty handle bound to ctx.
func NewGraphHandle(ctx *Context) *GraphHandle {
	return &GraphHandle{ctx: ctx}
}

// CaptureGuard opens a capture session on stream and returns a guard
// whose Run finalizes the session: it ends the capture, decides whether
// the handle's compiled instance can be updated in place or must be
// rebuilt, and launches it on the same stream.
//
// A disarmed no-op guard (and no error) is returned when capture is
// unavailable: the stream is nil or the legacy stream, the stream is
// already under a capture session, or the platform currently disallows
// implicit capture. In those cases the handle is left untouched and the
// caller's submissions execute normally.
func (h *GraphHandle) CaptureGuard(stream *Stream) (ScopeGuard, error) {
	// Can't capture on the legacy stream
	if stream == nil || stream.legacy {
		return ScopeGuard{}, nil
	}

	// If the caller is already capturing, no need for a nested capture.
	status, err := stream.CaptureStatus()
	if err != nil {
		return ScopeGuard{}, err
	}
	if status != CaptureStatusNone {
		return ScopeGuard{}, nil
	}

	status, err = h.ctx.LegacyStream().CaptureStatus()
	if errors.Is(err, ErrCaptureImplicit) {
		return ScopeGuard{}, nil
	}
	if err != nil {
		return ScopeGuard{}, err
	}
	if status != CaptureStatusNone {
		return ScopeGuard{}, nil
	}

	// Start capturing
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.graph != nil {
		if err := h.graph.destroy(); err != nil {
			return ScopeGuard{}, err
		}
		h.graph = nil
	}

	if err := stream.beginCapture(CaptureModeRelaxed); err != nil {
		return ScopeGuard{}, err
	}
	h.ctx.captures.push(h)

	// Stop capturing again once the returned guard runs
	return NewScopeGuard(func() error {
		return h.finishCapture(stream)
	}), nil
}

// finishCapture finalizes one capture session.
func (h *GraphHandle) finishCapture(stream *Stream) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	graph, err := stream.endCapture()
	if err != nil {
		return err
	}
	h.graph = graph

	if popped := h.ctx.captures.pop(); popped != h {
		return NewNestingError("CaptureGuard", "must end captures in reverse order of creation")
	}

	if h.syncPending {
		if err := h.ctx.Synchronize(); err != nil {
			return err
		}
		h.syncPending = false
	}

	// Capture failed for some reason. Reset state and don't execute
	// anything. A corresponding error is likely already in flight.
	if h.graph == nil {
		if h.instance != nil {
			if err := h.instance.destroy(); err != nil {
				return err
			}
			h.instance = nil
		}
		return nil
	}

	// If we previously compiled an instance, try to update it with the
	// newly captured graph. This is cheaper than creating a new instance
	// from scratch (and may involve just swapping payloads rather than
	// changing the topology of the graph.)
	if h.instance != nil {
		ok, err := h.instance.update(h.graph)
		if err != nil {
			return err
		}
		if !ok {
			if err := h.instance.destroy(); err != nil {
				return err
			}
			h.instance = nil
		}
	}

	if h.instance == nil {
		instance, err := instantiate(h.ctx, h.graph)
		if err != nil {
			return err
		}
		h.instance = instance
	}

	return h.instance.launch(stream)
}

// ScheduleSynchronize arranges for the next capture-session finalize to
// block the host until outstanding device work completes, before any
// update or launch decision. The request is one-shot and clears itself.
func (h *GraphHandle) ScheduleSynchronize() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.syncPending = true
}

// Reset destroys the held graph and instance, returning the handle to
// the empty state. It is idempotent.
func (h *GraphHandle) Reset() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.graph != nil {
		if err := h.graph.destroy(); err != nil {
			return err
		}
		h.graph = nil
	}

	if h.instance != nil {
		if err := h.instance.destroy(); err != nil {
			return err
		}
		h.instance = nil
	}
	return nil
}

// Close releases the handle's resources. It never fails: a teardown
// race with the context shutting down is suppressed, and any other
// release error is logged.
func (h *GraphHandle) Close() {
	if err := h.Reset(); err != nil && !IsShutdownError(err) {
		slog.Warn("could not destroy stream graph", "error", err)
	}
}
