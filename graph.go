package streamgraph

// graphNode is one recorded operation: its topology key and the work to
// perform when the graph is launched. Stream order defines the
// dependency between nodes.
type graphNode struct {
	key string
	run func()
}

// Graph is the recorded definition produced by one capture session: the
// operations submitted to the captured stream, in submission order. A
// Graph is exclusively owned by the GraphHandle whose session recorded
// it and is replaced wholesale by the next successful capture.
type Graph struct {
	ctx       *Context
	nodes     []graphNode
	destroyed bool
}

// NodeCount returns the number of recorded operations.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// destroy releases the recording. Destroying a graph while the context
// is tearing down reports the shutdown so callers can recognize the
// teardown race.
func (g *Graph) destroy() error {
	if g.ctx.isShutdown() {
		return NewShutdownError("GraphDestroy")
	}
	if g.destroyed {
		return NewInvalidArgError("GraphDestroy", "graph already destroyed")
	}
	g.destroyed = true
	g.nodes = nil
	return nil
}
