// Package fileutil provides the file copy and write primitives the export
// pipeline uses for artifacts that must never land half-written.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyVerified copies src to dst, then re-reads dst and compares its size
// and SHA-256 digest against what was streamed from src. A mismatch removes
// dst and reports an error, so callers never see a truncated or corrupted
// copy.
func CopyVerified(src, dst string) error {
	wantSum, wantSize, err := copyAndSum(src, dst)
	if err != nil {
		return err
	}

	gotSum, gotSize, err := fileSum(dst)
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("verify copy: %w", err)
	}
	if gotSize != wantSize {
		_ = os.Remove(dst)
		return fmt.Errorf("verify copy: %s holds %d of %d bytes", dst, gotSize, wantSize)
	}
	if !bytes.Equal(gotSum, wantSum) {
		_ = os.Remove(dst)
		return fmt.Errorf("verify copy: %s does not match source digest", dst)
	}
	return nil
}

// copyAndSum streams src into dst and returns the digest and byte count read
// from src. dst is removed on any error.
func copyAndSum(src, dst string) ([]byte, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, 0, err
	}

	sum := sha256.New()
	n, err := io.Copy(out, io.TeeReader(in, sum))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, 0, err
	}
	return sum.Sum(nil), n, nil
}

func fileSum(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	sum := sha256.New()
	n, err := io.Copy(sum, f)
	if err != nil {
		return nil, 0, err
	}
	return sum.Sum(nil), n, nil
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename, so readers observe either the old content
// or the complete new content.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
