package testutil

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"ibex-go/internal/extract"
)

// MemFS is an in-memory extract.FS for tests. It enforces the same
// append-only contract as the real filesystem: CopyFile refuses to
// overwrite an existing destination.
type MemFS struct {
	files  map[string][]byte
	dirs   map[string]bool
	stamps map[string]extract.Timestamps

	// CopyErr, when set, is returned by the next CopyFile call.
	CopyErr error
	// StampErr, when set, is returned by every Stamp call.
	StampErr error
}

func NewMemFS() *MemFS {
	return &MemFS{
		files:  make(map[string][]byte),
		dirs:   make(map[string]bool),
		stamps: make(map[string]extract.Timestamps),
	}
}

// AddFile places a file into the filesystem.
func (m *MemFS) AddFile(path string, content []byte) {
	m.files[path] = append([]byte(nil), content...)
}

// Content returns a file's content.
func (m *MemFS) Content(path string) ([]byte, bool) {
	b, ok := m.files[path]
	return b, ok
}

// Paths returns all file paths, sorted.
func (m *MemFS) Paths() []string {
	var paths []string
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// StampedWith returns the timestamps recorded by Stamp for a path.
func (m *MemFS) StampedWith(path string) (extract.Timestamps, bool) {
	ts, ok := m.stamps[path]
	return ts, ok
}

// MadeDirs reports whether any directory was created.
func (m *MemFS) MadeDirs() bool {
	return len(m.dirs) > 0
}

func (m *MemFS) Exists(path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

func (m *MemFS) Open(path string) (io.ReadCloser, error) {
	b, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *MemFS) MkdirAll(path string) error {
	m.dirs[path] = true
	return nil
}

func (m *MemFS) CopyFile(src, dst string) error {
	if m.CopyErr != nil {
		err := m.CopyErr
		m.CopyErr = nil
		return err
	}
	b, ok := m.files[src]
	if !ok {
		return fmt.Errorf("source not found: %s", src)
	}
	if _, exists := m.files[dst]; exists {
		return fmt.Errorf("destination already exists: %s", dst)
	}
	m.files[dst] = append([]byte(nil), b...)
	return nil
}

func (m *MemFS) Stamp(path string, ts extract.Timestamps) error {
	if m.StampErr != nil {
		return m.StampErr
	}
	m.stamps[path] = ts
	return nil
}

// Compile-time check that MemFS implements extract.FS
var _ extract.FS = (*MemFS)(nil)
