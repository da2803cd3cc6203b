// Package profile provides optional runtime profiling for the yapp command.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] behind the "pprof" build
// tag. Without the tag, [Modes] is empty and [Profiler.Start] returns a
// no-op, so callers never need their own build constraints.
//
// # Available Profiling Modes
//
// When built with the pprof tag:
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
//	p := profile.New(
//	    profile.WithMode("cpu"),
//	    profile.WithPath("/tmp/profiles"),
//	)
//	defer p.Start(ctx).Stop()
//
// The yapp command exposes the same settings as flags when built with the
// tag:
//
//	go build -tags pprof -o yapp .
//	yapp --pprof-mode=cpu eval '2 ^ 62 + 1'
//	go tool pprof -http=: ~/.cache/yapp/pprof/cpu.pprof
//
// Profile files are written to the output directory with names matching the
// profiling mode (cpu.pprof, mem.pprof, ...). Importing this package with the
// tag also registers the [net/http/pprof] handlers on the default mux.
package profile
