// Copyright ©2025 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package streamgraph provides reusable, replayable command-stream graphs
// for GUDA-style compute runtimes.
//
// Launching many small kernels one at a time pays host-side submission
// overhead on every launch. When the same operation topology repeats
// across iterations (the usual shape of a training or inference step),
// that overhead can be amortized: record the submitted operations once
// into a graph, compile the graph into a launch-ready instance, and on
// later iterations either relaunch the instance or cheaply update it in
// place instead of rebuilding it.
//
// A GraphHandle owns one recorded graph definition and one compiled
// instance. Wrapping a region of stream submissions in a capture guard
// records the region instead of executing it; when the guard runs, the
// handle decides whether the existing instance can be updated in place
// (same topology) or must be rebuilt, and then launches it on the same
// stream.
//
// Example usage:
//
//	ctx := streamgraph.NewContext()
//	defer ctx.Destroy()
//
//	stream := ctx.CreateStream()
//	graph := streamgraph.NewGraphHandle(ctx)
//	defer graph.Close()
//
//	for step := 0; step < steps; step++ {
//		guard, err := graph.CaptureGuard(stream)
//		if err != nil {
//			return err
//		}
//
//		// Recorded on the first iteration, replayed afterwards.
//		streamgraph.LaunchFunc(stream, forward, gridF, blockF)
//		streamgraph.LaunchFunc(stream, backward, gridB, blockB)
//
//		if err := guard.Run(); err != nil {
//			return err
//		}
//	}
package streamgraph
