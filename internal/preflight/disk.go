package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FreeSpace reports the bytes available to unprivileged writers on the
// filesystem containing path.
func FreeSpace(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}

// Writable verifies the current process may create files under dir.
func Writable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return unix.Access(dir, unix.W_OK|unix.X_OK)
}

// CheckFreeSpace verifies that at least minMB megabytes are available on the
// filesystem containing path. A zero or negative floor always passes.
func CheckFreeSpace(name, path string, minMB int64) Result {
	free, err := FreeSpace(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", path, err)}
	}
	freeMB := free / (1 << 20)
	if minMB > 0 && freeMB < minMB {
		return Result{Name: name, Detail: fmt.Sprintf("%d MB free, need %d MB", freeMB, minMB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d MB free", freeMB)}
}
