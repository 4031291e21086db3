// Package fs is the real filesystem implementation of the extract.FS port.
package fs

import (
	"fmt"
	"io"
	"os"

	"ibex-go/internal/extract"
)

// OSFilesystemManager performs actual filesystem operations using the os
// package. The output tree is treated as append-only: existing files are
// never truncated or overwritten.
type OSFilesystemManager struct{}

func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// Exists reports whether a file exists at path.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// MkdirAll creates a directory and any missing parents.
func (m *OSFilesystemManager) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// CopyFile copies src to dst with exclusive-create semantics: if dst
// appears between the caller's existence check and the copy, this fails
// instead of overwriting. A partially written destination is removed.
func (m *OSFilesystemManager) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying content: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("closing destination: %w", err)
	}
	return nil
}

// TempCopy copies src to a fresh temp file and returns its path. Used to
// give the database layers a private, read-only copy so the source backup
// is never locked or mutated. The caller removes the copy when done.
func TempCopy(src, pattern string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("copying to temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return out.Name(), nil
}

// Compile-time check that OSFilesystemManager implements extract.FS
var _ extract.FS = (*OSFilesystemManager)(nil)
