package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"clipforge/internal/config"
)

// Result is one preflight finding: which check ran, whether it passed, and
// a line explaining any failure.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll runs every check that applies to the config. Optional paths are
// only checked when configured.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckFontDirectory(cfg.Paths.FontDir),
		CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, cfg.Export.MinFreeSpaceMB),
	}
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: status.Detail})
	}
	return results
}

// CheckDirectoryAccess verifies that path is a directory this process can
// read, write, and traverse.
func CheckDirectoryAccess(name, path string) Result {
	fail := func(problem string) Result {
		return Result{Name: name, Detail: path + ": " + problem}
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fail("does not exist")
	case err != nil:
		return fail(err.Error())
	case !info.IsDir():
		return fail("not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail(fmt.Sprintf("insufficient permissions (%v)", err))
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

// CheckFontDirectory verifies the configured font directory is readable.
// Absence passes rather than fails: captions fall back to the embedded face
// when no custom fonts are provisioned.
func CheckFontDirectory(path string) Result {
	const name = "Font directory"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Passed: true, Detail: "not configured (embedded font in use)"}
	}

	fail := func(problem string) Result {
		return Result{Name: name, Detail: path + ": " + problem}
	}
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return Result{Name: name, Passed: true, Detail: path + " missing (embedded font in use)"}
	case err != nil:
		return fail(err.Error())
	case !info.IsDir():
		return fail("not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return fail(fmt.Sprintf("insufficient permissions (%v)", err))
	}
	return Result{Name: name, Passed: true, Detail: path}
}
