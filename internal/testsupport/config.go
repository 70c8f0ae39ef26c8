package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

// ConfigOption adjusts the generated test configuration. Options receive
// the temp root so they can place files next to the config directories.
type ConfigOption func(tb testing.TB, base string, cfg *config.Config)

// NewConfig returns a config whose directories all live under a fresh
// per-test temp root, with any options applied on top.
func NewConfig(tb testing.TB, opts ...ConfigOption) *config.Config {
	tb.Helper()

	base := tb.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.FontDir = filepath.Join(base, "fonts")

	for _, opt := range opts {
		opt(tb, base, &cfg)
	}
	return &cfg
}

// WithQuality sets the default quality preset.
func WithQuality(quality string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Export.Quality = quality
	}
}

// WithWorkers forces a fixed render worker count.
func WithWorkers(count int) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Render.Workers = count
	}
}

// WithStubbedBinaries puts no-op executables for the named tools on PATH
// for the duration of the test. With no names, ffmpeg and ffprobe are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(tb testing.TB, base string, _ *config.Config) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(base, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			tb.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			stub := filepath.Join(binDir, name)
			if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				tb.Fatalf("write stub %s: %v", name, err)
			}
		}
		tb.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the temp root backing a config from NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
