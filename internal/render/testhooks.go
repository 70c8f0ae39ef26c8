package render

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// logicalCores and freeMemoryBytes feed the worker-count heuristic. They are
// package-level variables so tests can pin them.
var (
	logicalCores    = runtime.NumCPU
	freeMemoryBytes = readFreeMemory
)

func readFreeMemory() int64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return int64(info.Freeram) * int64(info.Unit)
}

// SetResourcesForTests overrides CPU and free-memory detection during tests.
func SetResourcesForTests(cores func() int, free func() int64) func() {
	prevCores, prevFree := logicalCores, freeMemoryBytes
	if cores != nil {
		logicalCores = cores
	}
	if free != nil {
		freeMemoryBytes = free
	}
	return func() {
		logicalCores, freeMemoryBytes = prevCores, prevFree
	}
}

// poolStart is checked before the parallel pool spins up so tests can force
// the sequential fallback.
var poolStart = func() error { return nil }

// SetPoolFailureForTests makes the worker pool refuse to start.
func SetPoolFailureForTests(fn func() error) func() {
	previous := poolStart
	poolStart = fn
	return func() {
		poolStart = previous
	}
}
