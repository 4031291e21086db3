package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// unknownDateDir is where records without a recovered modification time
// land under the ym/ymd layouts.
const unknownDateDir = "Unknown_Date"

// Resolver computes destination paths under the output root and detects
// content duplicates. Existing output files are never modified; a name
// collision either proves the content is already exported (by hash) or
// yields the next free disambiguated name.
type Resolver struct {
	fs     FS
	root   string
	layout Layout
	prefix bool
	sep    Separator
}

// NewResolver creates a Resolver for one run's output root and naming options.
func NewResolver(fs FS, root string, layout Layout, prependDate bool, sep Separator) *Resolver {
	return &Resolver{fs: fs, root: root, layout: layout, prefix: prependDate, sep: sep}
}

// Resolve returns the destination for a record, relative to the output
// root, or duplicate=true when byte-identical content already exists under
// the colliding name (or one of its disambiguations).
//
// The fast path does no hashing: if the plain destination does not exist
// it is the answer, which keeps incremental runs cheap.
func (r *Resolver) Resolve(src string, name string, ts Timestamps) (rel string, duplicate bool, err error) {
	if r.prefix && ts.LastModified != nil {
		name = ts.LastModified.Format(r.sep.prefixFormat()) + name
	}
	sub := r.subdir(ts)

	plain := path.Join(sub, name)
	exists, err := r.fs.Exists(filepath.Join(r.root, plain))
	if err != nil {
		return "", false, fmt.Errorf("checking destination %s: %w", plain, err)
	}
	if !exists {
		return plain, false, nil
	}

	srcSum, err := r.hash(src)
	if err != nil {
		return "", false, fmt.Errorf("hashing source content: %w", err)
	}

	existingSum, err := r.hash(filepath.Join(r.root, plain))
	if err != nil {
		return "", false, fmt.Errorf("hashing existing %s: %w", plain, err)
	}
	if existingSum == srcSum {
		return "", true, nil
	}

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := path.Join(sub, fmt.Sprintf("%s.%d%s", base, i, ext))
		abs := filepath.Join(r.root, candidate)

		exists, err := r.fs.Exists(abs)
		if err != nil {
			return "", false, fmt.Errorf("checking destination %s: %w", candidate, err)
		}
		if !exists {
			return candidate, false, nil
		}

		sum, err := r.hash(abs)
		if err != nil {
			return "", false, fmt.Errorf("hashing existing %s: %w", candidate, err)
		}
		if sum == srcSum {
			return "", true, nil
		}
	}
}

// subdir returns the layout subdirectory for the given timestamps.
func (r *Resolver) subdir(ts Timestamps) string {
	switch r.layout {
	case LayoutYM:
		if ts.LastModified == nil {
			return unknownDateDir
		}
		return ts.LastModified.Format("2006-01")
	case LayoutYMD:
		if ts.LastModified == nil {
			return unknownDateDir
		}
		return ts.LastModified.Format("2006-01-02")
	default:
		return ""
	}
}

// hash returns the hex SHA-256 of a file's content.
func (r *Resolver) hash(p string) (string, error) {
	f, err := r.fs.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
