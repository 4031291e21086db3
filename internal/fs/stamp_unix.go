//go:build unix && !darwin

package fs

import (
	"os"

	"ibex-go/internal/extract"
)

// Stamp applies the recovered timestamps to a copied file.
// These platforms have no portable way to set a file's creation time, so
// this degrades to modification time only, per the Stamp contract.
func (m *OSFilesystemManager) Stamp(path string, ts extract.Timestamps) error {
	mod := ts.LastModified
	if mod == nil {
		mod = ts.Birth
	}
	if mod == nil {
		return nil
	}
	return os.Chtimes(path, *mod, *mod)
}
