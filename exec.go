package streamgraph

import (
	"sync/atomic"
)

// nextExecID numbers instances so rebuilds are distinguishable from
// in-place updates.
var nextExecID uint64

// ExecGraph is the compiled, launch-ready form of a Graph. It is
// exclusively owned by the GraphHandle that instantiated it. An instance
// can be updated in place when a newly captured Graph has the same
// topology as the one it was built from; otherwise it must be destroyed
// and rebuilt.
type ExecGraph struct {
	ctx       *Context
	id        uint64
	keys      []string
	tasks     []func()
	updates   int
	launches  int
	destroyed bool
}

// instantiate compiles graph into a launchable instance.
func instantiate(ctx *Context, graph *Graph) (*ExecGraph, error) {
	if ctx.isShutdown() {
		return nil, NewShutdownError("GraphInstantiate")
	}
	if graph == nil || graph.destroyed {
		return nil, NewInvalidArgError("GraphInstantiate", "nil or destroyed graph")
	}

	e := &ExecGraph{
		ctx:   ctx,
		id:    atomic.AddUint64(&nextExecID, 1),
		keys:  make([]string, len(graph.nodes)),
		tasks: make([]func(), len(graph.nodes)),
	}
	for i, n := range graph.nodes {
		e.keys[i] = n.key
		e.tasks[i] = n.run
	}
	return e, nil
}

// ID returns the instance's identity. The ID survives in-place updates
// and changes on rebuild.
func (e *ExecGraph) ID() uint64 {
	return e.id
}

// update attempts an in-place update against a newly captured graph.
// It reports false when the graph's topology is incompatible with the
// instance, in which case the instance is unchanged and the caller must
// rebuild. On success the instance's work payloads are replaced and it
// remains valid. This is the single seam for platform differences in
// update capability.
func (e *ExecGraph) update(graph *Graph) (bool, error) {
	if e.ctx.isShutdown() {
		return false, NewShutdownError("GraphExecUpdate")
	}
	if e.destroyed {
		return false, NewExecutionError("GraphExecUpdate", "instance already destroyed", nil)
	}
	if graph == nil || graph.destroyed {
		return false, NewInvalidArgError("GraphExecUpdate", "nil or destroyed graph")
	}

	if len(graph.nodes) != len(e.keys) {
		return false, nil
	}
	for i, n := range graph.nodes {
		if n.key != e.keys[i] {
			return false, nil
		}
	}

	for i, n := range graph.nodes {
		e.tasks[i] = n.run
	}
	e.updates++
	return true, nil
}

// launch submits the instance's work to stream as one ordered unit.
// Execution is asynchronous; synchronize the stream to observe results.
func (e *ExecGraph) launch(stream *Stream) error {
	if e.ctx.isShutdown() {
		return NewShutdownError("GraphLaunch")
	}
	if e.destroyed {
		return NewExecutionError("GraphLaunch", "instance already destroyed", nil)
	}
	if stream == nil {
		return ErrNilStream
	}

	// Snapshot so a later in-place update cannot race a launch that is
	// still queued on the stream.
	tasks := make([]func(), len(e.tasks))
	copy(tasks, e.tasks)
	stream.Submit(func() {
		for _, task := range tasks {
			task()
		}
	})
	e.launches++
	return nil
}

// destroy releases the instance.
func (e *ExecGraph) destroy() error {
	if e.ctx.isShutdown() {
		return NewShutdownError("GraphExecDestroy")
	}
	if e.destroyed {
		return NewInvalidArgError("GraphExecDestroy", "instance already destroyed")
	}
	e.destroyed = true
	e.tasks = nil
	return nil
}
