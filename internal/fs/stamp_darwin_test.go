//go:build darwin

package fs

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"ibex-go/internal/extract"
)

func birthTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	st := info.Sys().(*syscall.Stat_t)
	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
}

func TestStampSetsCreationTime(t *testing.T) {
	m := NewOSFilesystemManager()
	path := filepath.Join(t.TempDir(), "file")
	writeFile(t, path, []byte("x"))

	birth := time.Date(2024, 7, 13, 9, 0, 0, 0, time.Local)
	mod := time.Date(2024, 7, 14, 10, 0, 0, 0, time.Local)
	if err := m.Stamp(path, extract.Timestamps{LastModified: &mod, Birth: &birth}); err != nil {
		t.Fatalf("Stamp() error = %v", err)
	}

	if got := birthTime(t, path); !got.Equal(birth) {
		t.Errorf("creation time = %v, want %v", got, birth)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mod) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), mod)
	}
}

func TestStampCreationTimeFallsBackToModification(t *testing.T) {
	m := NewOSFilesystemManager()
	path := filepath.Join(t.TempDir(), "file")
	writeFile(t, path, []byte("x"))

	mod := time.Date(2024, 7, 14, 10, 0, 0, 0, time.Local)
	if err := m.Stamp(path, extract.Timestamps{LastModified: &mod}); err != nil {
		t.Fatalf("Stamp() error = %v", err)
	}

	if got := birthTime(t, path); !got.Equal(mod) {
		t.Errorf("creation time = %v, want %v", got, mod)
	}
}
