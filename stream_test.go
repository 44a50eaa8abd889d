package streamgraph

import (
	"sync/atomic"
	"testing"
)

func TestStreamOrdering(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	stream := ctx.CreateStream()

	const N = 100
	var order []int
	for i := 0; i < N; i++ {
		i := i
		stream.Submit(func() {
			order = append(order, i)
		})
	}
	stream.Synchronize()

	if len(order) != N {
		t.Fatalf("Expected %d tasks to run, got %d", N, len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("Task %d ran out of order (position %d)", v, i)
		}
	}
}

func TestCaptureRecordsInsteadOfExecuting(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	stream := ctx.CreateStream()

	if err := stream.beginCapture(CaptureModeRelaxed); err != nil {
		t.Fatalf("beginCapture failed: %v", err)
	}

	var ran int64
	stream.Submit(func() { atomic.AddInt64(&ran, 1) })
	stream.Submit(func() { atomic.AddInt64(&ran, 1) })
	stream.Synchronize()

	if n := atomic.LoadInt64(&ran); n != 0 {
		t.Errorf("Captured work executed %d times before launch", n)
	}

	graph, err := stream.endCapture()
	if err != nil {
		t.Fatalf("endCapture failed: %v", err)
	}
	if graph == nil {
		t.Fatal("Expected a graph from a successful capture")
	}
	if graph.NodeCount() != 2 {
		t.Errorf("Expected 2 recorded nodes, got %d", graph.NodeCount())
	}
	if n := atomic.LoadInt64(&ran); n != 0 {
		t.Errorf("Captured work executed %d times before launch", n)
	}
}

func TestCaptureStatus(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	stream := ctx.CreateStream()

	status, err := stream.CaptureStatus()
	if err != nil {
		t.Fatalf("CaptureStatus failed: %v", err)
	}
	if status != CaptureStatusNone {
		t.Errorf("Expected CaptureStatusNone, got %v", status)
	}

	if err := stream.beginCapture(CaptureModeRelaxed); err != nil {
		t.Fatalf("beginCapture failed: %v", err)
	}
	status, _ = stream.CaptureStatus()
	if status != CaptureStatusActive {
		t.Errorf("Expected CaptureStatusActive, got %v", status)
	}

	stream.InvalidateCapture()
	status, _ = stream.CaptureStatus()
	if status != CaptureStatusInvalidated {
		t.Errorf("Expected CaptureStatusInvalidated, got %v", status)
	}

	if _, err := stream.endCapture(); err != nil {
		t.Fatalf("endCapture failed: %v", err)
	}
}

func TestInvalidatedCaptureYieldsNoGraph(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	stream := ctx.CreateStream()

	if err := stream.beginCapture(CaptureModeRelaxed); err != nil {
		t.Fatalf("beginCapture failed: %v", err)
	}
	stream.Submit(func() {})
	stream.InvalidateCapture()

	graph, err := stream.endCapture()
	if err != nil {
		t.Fatalf("endCapture failed: %v", err)
	}
	if graph != nil {
		t.Error("Expected nil graph from invalidated capture")
	}
}

func TestCaptureErrors(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	stream := ctx.CreateStream()

	// End without begin
	if _, err := stream.endCapture(); !IsCaptureError(err) {
		t.Errorf("Expected capture error, got %v", err)
	}

	// Legacy stream is not capturable
	if err := ctx.LegacyStream().beginCapture(CaptureModeRelaxed); !IsInvalidArgError(err) {
		t.Errorf("Expected invalid argument error, got %v", err)
	}

	// Double begin
	if err := stream.beginCapture(CaptureModeRelaxed); err != nil {
		t.Fatalf("beginCapture failed: %v", err)
	}
	if err := stream.beginCapture(CaptureModeRelaxed); !IsCaptureError(err) {
		t.Errorf("Expected capture error on double begin, got %v", err)
	}
	if _, err := stream.endCapture(); err != nil {
		t.Fatalf("endCapture failed: %v", err)
	}
}

func TestLegacyStreamAmbientStatus(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	legacy := ctx.LegacyStream()
	other := ctx.CreateStream()

	// No captures open: legacy is idle.
	status, err := legacy.CaptureStatus()
	if err != nil || status != CaptureStatusNone {
		t.Fatalf("Expected idle legacy stream, got status %v err %v", status, err)
	}

	// A local-mode capture forbids touching the legacy stream.
	if err := other.beginCapture(CaptureModeLocal); err != nil {
		t.Fatalf("beginCapture failed: %v", err)
	}
	if _, err := legacy.CaptureStatus(); err != ErrCaptureImplicit {
		t.Errorf("Expected ErrCaptureImplicit, got %v", err)
	}
	if _, err := other.endCapture(); err != nil {
		t.Fatalf("endCapture failed: %v", err)
	}

	// A global-mode capture makes the legacy stream count as capturing.
	if err := other.beginCapture(CaptureModeGlobal); err != nil {
		t.Fatalf("beginCapture failed: %v", err)
	}
	status, err = legacy.CaptureStatus()
	if err != nil {
		t.Fatalf("CaptureStatus failed: %v", err)
	}
	if status != CaptureStatusActive {
		t.Errorf("Expected CaptureStatusActive, got %v", status)
	}
	if _, err := other.endCapture(); err != nil {
		t.Fatalf("endCapture failed: %v", err)
	}

	// A relaxed capture leaves the legacy stream untouched.
	if err := other.beginCapture(CaptureModeRelaxed); err != nil {
		t.Fatalf("beginCapture failed: %v", err)
	}
	status, err = legacy.CaptureStatus()
	if err != nil || status != CaptureStatusNone {
		t.Errorf("Expected idle legacy stream under relaxed capture, got status %v err %v", status, err)
	}
	if _, err := other.endCapture(); err != nil {
		t.Fatalf("endCapture failed: %v", err)
	}
}

func TestShutdownStreamOperations(t *testing.T) {
	ctx := NewContext()
	stream := ctx.CreateStream()
	ctx.Destroy()

	if err := stream.beginCapture(CaptureModeRelaxed); !IsShutdownError(err) {
		t.Errorf("Expected shutdown error, got %v", err)
	}
	if _, err := stream.CaptureStatus(); !IsShutdownError(err) {
		t.Errorf("Expected shutdown error, got %v", err)
	}
	if err := ctx.Synchronize(); !IsShutdownError(err) {
		t.Errorf("Expected shutdown error, got %v", err)
	}
}
