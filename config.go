// Package streamgraph configuration constants
package streamgraph

// Stream parameters
const (
	// Task queue depth per stream
	StreamQueueDepth = 1000
)

// Thread and block dimensions
const (
	// Default block size for kernels
	DefaultBlockSize = 256

	// Maximum threads per block (CUDA compatibility)
	MaxThreadsPerBlock = 1024
)
