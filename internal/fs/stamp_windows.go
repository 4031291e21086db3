//go:build windows

package fs

import (
	"golang.org/x/sys/windows"

	"ibex-go/internal/extract"
)

// Stamp applies the recovered timestamps to a copied file. Windows exposes
// creation-time mutation, so both creation and modification times are set;
// a missing field falls back to the other.
func (m *OSFilesystemManager) Stamp(path string, ts extract.Timestamps) error {
	mod, birth := ts.LastModified, ts.Birth
	if mod == nil && birth == nil {
		return nil
	}
	if mod == nil {
		mod = birth
	}
	if birth == nil {
		birth = mod
	}

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	h, err := windows.CreateFile(p, windows.FILE_WRITE_ATTRIBUTES,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, nil,
		windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)

	creation := windows.NsecToFiletime(birth.UnixNano())
	write := windows.NsecToFiletime(mod.UnixNano())
	return windows.SetFileTime(h, &creation, nil, &write)
}
