package encoding

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/services"
	"clipforge/internal/testsupport"
)

func writeFrames(t *testing.T, dir string, count int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir frames: %v", err)
	}
	for i := 0; i < count; i++ {
		name := filepath.Join(dir, fmt.Sprintf(framePattern, i+1))
		if err := os.WriteFile(name, []byte("png"), 0o644); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}
}

func TestValidateEnvironmentPasses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	enc := NewEncoderWithRunner(cfg, nil, nil)

	base := t.TempDir()
	framesDir := filepath.Join(base, "frames")
	writeFrames(t, framesDir, 2)

	req := Request{FramesDir: framesDir, Output: filepath.Join(base, "out.mp4")}
	if err := enc.validateEnvironment(req); err != nil {
		t.Fatalf("validateEnvironment: %v", err)
	}
}

func TestValidateEnvironmentRejectsEmptyFrames(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	enc := NewEncoderWithRunner(cfg, nil, nil)

	base := t.TempDir()
	framesDir := filepath.Join(base, "frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	req := Request{FramesDir: framesDir, Output: filepath.Join(base, "out.mp4")}
	err := enc.validateEnvironment(req)
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error for empty frames dir, got %v", err)
	}
}

func TestValidateEnvironmentRejectsUnwritableOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	enc := NewEncoderWithRunner(cfg, nil, nil)

	base := t.TempDir()
	framesDir := filepath.Join(base, "frames")
	writeFrames(t, framesDir, 1)

	req := Request{FramesDir: framesDir, Output: filepath.Join(base, "missing", "out.mp4")}
	err := enc.validateEnvironment(req)
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error for missing output dir, got %v", err)
	}
}

func TestValidateEnvironmentRejectsLowDiskSpace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	enc := NewEncoderWithRunner(cfg, nil, nil)

	restore := SetFreeSpaceForTests(func(string) (int64, error) {
		return 10 << 20, nil
	})
	defer restore()

	base := t.TempDir()
	framesDir := filepath.Join(base, "frames")
	writeFrames(t, framesDir, 1)

	req := Request{FramesDir: framesDir, Output: filepath.Join(base, "out.mp4")}
	err := enc.validateEnvironment(req)
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error for low disk space, got %v", err)
	}
}

func TestCountFrames(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, 3)
	if err := os.WriteFile(filepath.Join(dir, "concat.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write extra file: %v", err)
	}

	count, err := countFrames(dir)
	if err != nil {
		t.Fatalf("countFrames: %v", err)
	}
	if count != 3 {
		t.Fatalf("countFrames = %d, want 3", count)
	}
}
