package extract

import (
	"io"
	"time"
)

// Catalog provides access to the backup's file catalog. Implementations
// must yield media-domain records ordered by RelativePath ascending; a
// failed or partial read is fatal for the run.
type Catalog interface {
	// ForEachMediaRecord calls fn for every media-domain record in
	// RelativePath order. Iteration stops at the first error.
	ForEachMediaRecord(fn func(Record) error) error

	// BlobPath returns the on-disk location of a record's content blob.
	BlobPath(fileID string) string
}

// FS abstracts the filesystem operations the pipeline needs, so the
// orchestration logic can be tested without touching a real disk.
type FS interface {
	// Exists reports whether a file exists at path.
	Exists(path string) (bool, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// CopyFile copies src to dst. The destination is created exclusively;
	// an existing file at dst is an error, never overwritten.
	CopyFile(src, dst string) error

	// Stamp applies the recovered timestamps to a copied file. It sets
	// creation time where the platform exposes it and degrades to
	// modification time only where it does not.
	Stamp(path string, ts Timestamps) error
}

// MetadataDecoder turns a record's embedded metadata blob into timestamps.
// An empty blob decodes to absent timestamps without error.
type MetadataDecoder interface {
	Decode(blob []byte) (Timestamps, error)
}

// ExifReader recovers a capture time from image content. Used as an
// optional fallback when the metadata blob carries no timestamps.
type ExifReader interface {
	CaptureTime(r io.Reader) (time.Time, error)
}

// Reporter receives one call per processed (non-ineligible) record.
// outcome is either a relative destination path or a skip marker.
type Reporter interface {
	Record(index int, storageKey, name, outcome string)
}
