package streamgraph

import (
	"fmt"
	"runtime"
	"sync"
)

// Dim3 represents 3D dimensions for grid and block configurations.
// This matches CUDA's dim3 structure for kernel launch parameters.
type Dim3 struct {
	X, Y, Z int
}

// Size returns the total number of elements
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// ThreadID identifies a thread's position within the execution
// hierarchy, matching CUDA's blockIdx, threadIdx, blockDim and gridDim.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

// Global returns the global thread index
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// Kernel represents a compute kernel that can be executed in parallel.
// Implementations should be thread-safe as Execute will be called
// concurrently from multiple threads. The kernel's concrete type, along
// with its launch dimensions, identifies the operation's topology when a
// recorded graph is checked for in-place update compatibility.
type Kernel interface {
	Execute(tid ThreadID, args ...interface{})
}

// KernelFunc is a function that can be launched as a kernel.
type KernelFunc func(tid ThreadID, args ...interface{})

// Execute implements Kernel
func (fn KernelFunc) Execute(tid ThreadID, args ...interface{}) {
	fn(tid, args...)
}

// LaunchKernel submits kernel to stream for asynchronous execution
// across a grid of thread blocks. During a capture session the launch is
// recorded into the session's graph instead of executed.
func LaunchKernel(stream *Stream, kernel Kernel, grid, block Dim3, args ...interface{}) error {
	if stream == nil {
		return ErrNilStream
	}
	if block.Size() > MaxThreadsPerBlock {
		return NewInvalidArgError("LaunchKernel",
			fmt.Sprintf("block size %d exceeds maximum %d", block.Size(), MaxThreadsPerBlock))
	}

	key := launchKey(kernel, grid, block)
	if grid.Size() == 0 {
		// Submit an empty task to maintain stream ordering
		stream.submitNode(key, func() {})
		return nil
	}

	stream.submitNode(key, func() {
		runKernel(kernel.Execute, grid, block, args...)
	})
	return nil
}

// LaunchFunc submits a kernel function to stream
func LaunchFunc(stream *Stream, fn KernelFunc, grid, block Dim3, args ...interface{}) error {
	return LaunchKernel(stream, fn, grid, block, args...)
}

// launchKey derives the topology identity of a launch: the kernel's
// concrete type plus its grid and block dimensions.
func launchKey(kernel Kernel, grid, block Dim3) string {
	return fmt.Sprintf("kernel/%T/%d.%d.%d/%d.%d.%d",
		kernel, grid.X, grid.Y, grid.Z, block.X, block.Y, block.Z)
}

// runKernel executes every thread of a launch. Workers split the grid;
// threads within a block run sequentially on one worker to maximize
// cache reuse.
func runKernel(
	kernelFunc func(ThreadID, ...interface{}),
	grid, block Dim3,
	args ...interface{},
) {
	gridSize := grid.Size()
	blockSize := block.Size()

	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for workerID := 0; workerID < numWorkers; workerID++ {
		startBlock := workerID * blocksPerWorker
		endBlock := startBlock + blocksPerWorker
		if endBlock > gridSize {
			endBlock = gridSize
		}

		go func(startBlock, endBlock int) {
			defer wg.Done()

			for blockID := startBlock; blockID < endBlock; blockID++ {
				blockIdx := linearTo3D(blockID, grid)

				for threadID := 0; threadID < blockSize; threadID++ {
					tid := ThreadID{
						BlockIdx:  blockIdx,
						ThreadIdx: linearTo3D(threadID, block),
						BlockDim:  block,
						GridDim:   grid,
					}
					kernelFunc(tid, args...)
				}
			}
		}(startBlock, endBlock)
	}

	wg.Wait()
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
