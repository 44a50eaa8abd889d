package streamgraph

import (
	"sync/atomic"
	"testing"
)

func TestKernelLaunchCoversAllThreads(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	stream := ctx.CreateStream()

	var count int64
	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		atomic.AddInt64(&count, 1)
	})

	grid := Dim3{X: 4, Y: 1, Z: 1}
	block := Dim3{X: 64, Y: 1, Z: 1}
	if err := LaunchFunc(stream, kernel, grid, block); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	stream.Synchronize()

	want := int64(grid.Size() * block.Size())
	if got := atomic.LoadInt64(&count); got != want {
		t.Errorf("Expected %d thread executions, got %d", want, got)
	}
}

func TestKernelGlobalIndex(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	stream := ctx.CreateStream()

	const N = 256
	data := make([]int32, N)
	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		idx := tid.Global()
		if idx < N {
			data[idx] = int32(idx)
		}
	})

	grid := Dim3{X: (N + 63) / 64, Y: 1, Z: 1}
	block := Dim3{X: 64, Y: 1, Z: 1}
	if err := LaunchFunc(stream, kernel, grid, block); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	stream.Synchronize()

	for i, v := range data {
		if v != int32(i) {
			t.Fatalf("data[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestKernelZeroGridMaintainsOrdering(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	stream := ctx.CreateStream()

	var ran int64
	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		atomic.AddInt64(&ran, 1)
	})

	if err := LaunchFunc(stream, kernel, Dim3{}, Dim3{X: 64}); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	stream.Submit(func() { atomic.AddInt64(&ran, 100) })
	stream.Synchronize()

	if got := atomic.LoadInt64(&ran); got != 100 {
		t.Errorf("Expected only the follow-up task to run, counter %d", got)
	}
}

func TestKernelLaunchValidation(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()
	stream := ctx.CreateStream()

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {})

	if err := LaunchFunc(nil, kernel, Dim3{X: 1}, Dim3{X: 1}); !IsInvalidArgError(err) {
		t.Errorf("Expected invalid argument error for nil stream, got %v", err)
	}

	block := Dim3{X: MaxThreadsPerBlock + 1, Y: 1, Z: 1}
	if err := LaunchFunc(stream, kernel, Dim3{X: 1}, block); !IsInvalidArgError(err) {
		t.Errorf("Expected invalid argument error for oversized block, got %v", err)
	}
}

func TestDim3Size(t *testing.T) {
	tests := []struct {
		dim  Dim3
		want int
	}{
		{Dim3{X: 1, Y: 1, Z: 1}, 1},
		{Dim3{X: 4, Y: 2, Z: 3}, 24},
		{Dim3{X: 0, Y: 5, Z: 5}, 0},
	}

	for _, tt := range tests {
		if got := tt.dim.Size(); got != tt.want {
			t.Errorf("%+v.Size() = %d, want %d", tt.dim, got, tt.want)
		}
	}
}
