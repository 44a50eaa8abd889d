package streamgraph

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Device represents a compute device. Each device has a unique ID and
// capabilities; feature flags come from CPU detection.
type Device struct {
	ID         int    // Unique device identifier
	Name       string // Human-readable device name
	TotalMem   uint64 // Total available memory in bytes
	NumCores   int    // Number of CPU cores
	MaxThreads int    // Maximum concurrent threads
	SIMDLanes  int    // Widest float32 vector width
	Features   string // Detected instruction set extensions
}

// Context represents an execution context for stream and graph
// operations. It owns the streams, the legacy (default) stream, and the
// capture-session bookkeeping. A Context must be created before any
// operations and destroyed when no longer needed; device operations
// issued after Destroy fail with a shutdown error.
type Context struct {
	device   *Device
	streamID int32
	captures captureStack
	shutdown atomic.Bool

	mu             sync.Mutex
	streams        map[int]*Stream
	legacy         *Stream
	globalCaptures int
	localCaptures  int
}

// NewContext creates an execution context with its legacy stream.
func NewContext() *Context {
	ctx := &Context{
		device:  detectDevice(),
		streams: make(map[int]*Stream),
	}
	ctx.legacy = ctx.newStream(true)
	return ctx
}

// detectDevice describes the backing device
func detectDevice() *Device {
	return &Device{
		ID:         0,
		Name:       "CPU",
		TotalMem:   getSystemMemory(),
		NumCores:   runtime.NumCPU(),
		MaxThreads: runtime.NumCPU() * 2, // Hyperthreading
		SIMDLanes:  SIMDLanes(),
		Features:   GetCPUInfo(),
	}
}

// getSystemMemory returns total system memory in bytes
func getSystemMemory() uint64 {
	// This is a simplified version
	// In production, we'd use syscalls to get actual memory
	return 16 * 1024 * 1024 * 1024 // Default to 16GB
}

// Device returns the context's device information.
func (ctx *Context) Device() *Device {
	return ctx.device
}

func (ctx *Context) newStream(legacy bool) *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		ctx:    ctx,
		id:     id,
		legacy: legacy,
		tasks:  make(chan func(), StreamQueueDepth),
		done:   make(chan struct{}),
	}

	// Start worker goroutine for stream
	go stream.worker()

	ctx.mu.Lock()
	ctx.streams[id] = stream
	ctx.mu.Unlock()
	return stream
}

// CreateStream creates a new execution stream
func (ctx *Context) CreateStream() *Stream {
	return ctx.newStream(false)
}

// LegacyStream returns the context's implicit default stream. The legacy
// stream cannot be captured.
func (ctx *Context) LegacyStream() *Stream {
	return ctx.legacy
}

// Synchronize blocks the host until all outstanding work on all streams
// has completed.
func (ctx *Context) Synchronize() error {
	if ctx.isShutdown() {
		return NewShutdownError("Synchronize")
	}

	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	for _, s := range streams {
		s.Synchronize()
	}
	return nil
}

// CurrentCapture returns the handle owning the innermost open capture
// session on this context, or nil when no session is open.
func (ctx *Context) CurrentCapture() *GraphHandle {
	return ctx.captures.current()
}

// Destroy tears the context down. All streams are drained and stopped;
// device operations issued afterwards fail with a shutdown error.
func (ctx *Context) Destroy() {
	if !ctx.shutdown.CompareAndSwap(false, true) {
		return
	}

	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	for _, s := range streams {
		s.Close()
	}
}

func (ctx *Context) isShutdown() bool {
	return ctx.shutdown.Load()
}

// captureBegan records an opened session for ambient-capture queries
func (ctx *Context) captureBegan(mode CaptureMode) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	switch mode {
	case CaptureModeGlobal:
		ctx.globalCaptures++
	case CaptureModeLocal:
		ctx.localCaptures++
	}
}

// captureEnded records a closed session
func (ctx *Context) captureEnded(mode CaptureMode) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	switch mode {
	case CaptureModeGlobal:
		ctx.globalCaptures--
	case CaptureModeLocal:
		ctx.localCaptures--
	}
}

// ambientCaptures reports the open non-relaxed sessions on the context
func (ctx *Context) ambientCaptures() (global, local int) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.globalCaptures, ctx.localCaptures
}
