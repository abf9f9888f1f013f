package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrEmptySource is returned when the file being copied has no content.
var ErrEmptySource = errors.New("source file is empty")

const partialSuffix = ".partial"

// Copy streams src into dst through a sibling ".partial" file that is renamed
// into place only after a successful write. It returns the bytes copied.
func Copy(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("source %s is a directory", src)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%s: %w", src, ErrEmptySource)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("ensure destination dir: %w", err)
	}
	partial := dst + partialSuffix
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	written, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(partial)
		return 0, err
	}
	if written != info.Size() {
		_ = os.Remove(partial)
		return 0, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if err := os.Rename(partial, dst); err != nil {
		_ = os.Remove(partial)
		return 0, err
	}
	return written, nil
}

// CopyVerified copies src to dst and then re-reads both files, removing dst if
// their SHA-256 digests differ.
func CopyVerified(src, dst string) (int64, error) {
	written, err := Copy(src, dst)
	if err != nil {
		return 0, err
	}
	want, err := Checksum(src)
	if err != nil {
		return 0, err
	}
	got, err := Checksum(dst)
	if err != nil {
		return 0, err
	}
	if want != got {
		_ = os.Remove(dst)
		return 0, fmt.Errorf("copy hash mismatch for %s", dst)
	}
	return written, nil
}

// Checksum returns the hex SHA-256 digest of path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
