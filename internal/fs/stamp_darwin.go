//go:build darwin

package fs

import (
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"ibex-go/internal/extract"
)

// Stamp applies the recovered timestamps to a copied file. Darwin exposes
// creation-time mutation through setattrlist, so both creation and
// modification times are set; a missing field falls back to the other.
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

	if err := setCreationTime(path, *birth); err != nil {
		return err
	}
	return os.Chtimes(path, *mod, *mod)
}

func setCreationTime(path string, t time.Time) error {
	attrs := unix.Attrlist{
		Bitmapcount: unix.ATTR_BIT_MAP_COUNT,
		Commonattr:  unix.ATTR_CMN_CRTIME,
	}
	spec := unix.NsecToTimespec(t.UnixNano())
	buf := make([]byte, unsafe.Sizeof(spec))
	*(*unix.Timespec)(unsafe.Pointer(&buf[0])) = spec
	return unix.SetattrlistRaw(path, &attrs, buf, 0)
}
