package encoding

import "clipforge/internal/preflight"

// freeSpace is swapped by tests that need to simulate full or failing disks.
var freeSpace = preflight.FreeSpace

// SetFreeSpaceForTests overrides free-disk probing and returns a restore
// function.
func SetFreeSpaceForTests(fn func(path string) (int64, error)) func() {
	prev := freeSpace
	freeSpace = fn
	return func() { freeSpace = prev }
}
