package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyVerifiedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "segment-003.mp4")
	dst := filepath.Join(dir, "staged-003.mp4")

	payload := bytes.Repeat([]byte("frame payload 0123456789 "), 512)
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	if err := CopyVerified(src, dst); err != nil {
		t.Fatalf("CopyVerified: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("copy differs from source: %d vs %d bytes", len(got), len(payload))
	}
}

func TestCopyVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.mp4")

	if err := CopyVerified(filepath.Join(dir, "absent.mp4"), dst); err == nil {
		t.Fatal("want an error for a missing source")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("dst should not linger after a failed copy: %v", err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captions.srt")

	if err := WriteFileAtomic(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("new content"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "new content" {
		t.Fatalf("content = %q, want the replacement", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Fatalf("mode = %o, want 644", perm)
	}

	// No temp files may survive a successful write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("leftover temp file: %s", entry.Name())
		}
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	dir := t.TempDir()

	err := WriteFileAtomic(filepath.Join(dir, "missing", "out.srt"), []byte("data"), 0o644)
	if err == nil {
		t.Fatal("want an error when the parent directory is absent")
	}
}
