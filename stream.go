package streamgraph

import (
	"sync"
)

// CaptureStatus reports whether a stream is currently recording
// submitted work into a graph.
type CaptureStatus int

const (
	// CaptureStatusNone means the stream is executing work normally
	CaptureStatusNone CaptureStatus = iota
	// CaptureStatusActive means submitted work is being recorded
	CaptureStatusActive
	// CaptureStatusInvalidated means the open capture has been aborted
	// and will produce no graph
	CaptureStatusInvalidated
)

// CaptureMode controls how strictly a capture session interacts with
// work submitted outside the captured stream.
type CaptureMode int

const (
	// CaptureModeGlobal captures ambient work, including the legacy stream
	CaptureModeGlobal CaptureMode = iota
	// CaptureModeLocal captures only the target stream and forbids
	// touching the legacy stream while the session is open
	CaptureModeLocal
	// CaptureModeRelaxed captures only the target stream and tolerates
	// concurrent submissions elsewhere, including from other goroutines
	CaptureModeRelaxed
)

// Stream represents an ordered sequence of operations that execute
// asynchronously. Operations within a stream execute in order, but
// operations in different streams may execute concurrently. While a
// capture session is open on a stream, submitted operations are recorded
// instead of executed.
type Stream struct {
	ctx    *Context
	id     int
	legacy bool
	tasks  chan func()
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	mu      sync.Mutex
	capture *captureState
}

// captureState is the in-progress recording of one capture session.
type captureState struct {
	mode        CaptureMode
	nodes       []graphNode
	invalidated bool
}

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// Submit adds a task to the stream. During a capture session the task is
// recorded into the session's graph instead of being enqueued.
func (s *Stream) Submit(task func()) {
	s.submitNode("task", task)
}

// submitNode is the common submission path. key identifies the
// operation's topology for graph update compatibility checks.
func (s *Stream) submitNode(key string, task func()) {
	s.mu.Lock()
	if c := s.capture; c != nil {
		if !c.invalidated {
			c.nodes = append(c.nodes, graphNode{key: key, run: task})
		}
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.wg.Add(1)
	s.tasks <- task
}

// Synchronize waits for all tasks in the stream to complete
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// CaptureStatus queries the stream's capture state. Querying the legacy
// stream reports the ambient capture state of the context: an open
// global-mode capture makes the legacy stream itself count as capturing,
// and an open local-mode capture makes touching it an error
// (ErrCaptureImplicit).
func (s *Stream) CaptureStatus() (CaptureStatus, error) {
	if s.ctx.isShutdown() {
		return CaptureStatusNone, NewShutdownError("CaptureStatus")
	}

	if s.legacy {
		global, local := s.ctx.ambientCaptures()
		if local > 0 {
			return CaptureStatusNone, ErrCaptureImplicit
		}
		if global > 0 {
			return CaptureStatusActive, nil
		}
		return CaptureStatusNone, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.capture == nil:
		return CaptureStatusNone, nil
	case s.capture.invalidated:
		return CaptureStatusInvalidated, nil
	default:
		return CaptureStatusActive, nil
	}
}

// beginCapture opens a capture session on the stream. Work submitted
// until endCapture is recorded, not executed.
func (s *Stream) beginCapture(mode CaptureMode) error {
	if s.ctx.isShutdown() {
		return NewShutdownError("BeginCapture")
	}
	if s.legacy {
		return ErrLegacyStreamCapture
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture != nil {
		return NewCaptureError("BeginCapture", "stream is already capturing", nil)
	}
	s.capture = &captureState{mode: mode}
	s.ctx.captureBegan(mode)
	return nil
}

// endCapture closes the open capture session and returns the recorded
// graph. An invalidated session yields a nil graph and no error; the
// failure that invalidated it is presumed already reported.
func (s *Stream) endCapture() (*Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.capture
	if c == nil {
		return nil, NewCaptureError("EndCapture", "stream is not capturing", nil)
	}
	s.capture = nil
	s.ctx.captureEnded(c.mode)

	if s.ctx.isShutdown() {
		return nil, NewShutdownError("EndCapture")
	}
	if c.invalidated {
		return nil, nil
	}
	return &Graph{ctx: s.ctx, nodes: c.nodes}, nil
}

// InvalidateCapture aborts the open capture session, if any. Already
// recorded work is dropped and endCapture will produce no graph.
func (s *Stream) InvalidateCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture != nil {
		s.capture.invalidated = true
		s.capture.nodes = nil
	}
}

// Close drains the stream and stops its worker. The stream must not be
// used afterwards.
func (s *Stream) Close() {
	s.once.Do(func() {
		close(s.tasks)
		<-s.done
	})
}
