// Package catalog reads the backup's file catalog (Manifest.db) through a
// private, read-only copy. The source backup is never opened for writing.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ibex-go/internal/extract"
	"ibex-go/internal/fs"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// MediaDomain is the catalog namespace tag for camera-roll files.
const MediaDomain = "CameraRollDomain"

// manifestName is the catalog database file at the backup root.
const manifestName = "Manifest.db"

// Catalog is the sqlite-backed implementation of extract.Catalog.
type Catalog struct {
	db         *sql.DB
	backupRoot string
	copyPath   string
}

// Open copies the backup's catalog database to a temp file and opens it
// read-only. Unreadable or missing catalogs are fatal for the run.
// The caller must call Close, which also removes the private copy.
func Open(backupRoot string) (*Catalog, error) {
	src := filepath.Join(backupRoot, manifestName)
	copyPath, err := fs.TempCopy(src, "ibex-manifest-*.db")
	if err != nil {
		return nil, fmt.Errorf("copying catalog database: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&immutable=1", copyPath))
	if err != nil {
		os.Remove(copyPath)
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	return &Catalog{db: db, backupRoot: backupRoot, copyPath: copyPath}, nil
}

// ForEachMediaRecord calls fn for every media-domain record, ordered by
// relativePath ascending. Paths embed the device's DCIM roll ordering, so
// this yields a chronological, predictable numbering in progress output.
func (c *Catalog) ForEachMediaRecord(fn func(extract.Record) error) error {
	rows, err := c.db.Query(
		`SELECT fileID, relativePath, file FROM Files WHERE domain = ? ORDER BY relativePath`,
		MediaDomain,
	)
	if err != nil {
		return fmt.Errorf("querying file catalog: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec extract.Record
		if err := rows.Scan(&rec.FileID, &rec.RelativePath, &rec.Metadata); err != nil {
			return fmt.Errorf("scanning catalog row: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading file catalog: %w", err)
	}
	return nil
}

// LookupPath resolves a single catalog record by domain and logical path.
// The second return value is false when no such record exists.
func (c *Catalog) LookupPath(domain, relativePath string) (extract.Record, bool, error) {
	var rec extract.Record
	err := c.db.QueryRow(
		`SELECT fileID, relativePath, file FROM Files WHERE domain = ? AND relativePath = ?`,
		domain, relativePath,
	).Scan(&rec.FileID, &rec.RelativePath, &rec.Metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return extract.Record{}, false, nil
	}
	if err != nil {
		return extract.Record{}, false, fmt.Errorf("looking up %s: %w", relativePath, err)
	}
	return rec, true, nil
}

// BlobPath returns the on-disk location of a record's content blob: the
// first two characters of the fileID name the shard directory.
func (c *Catalog) BlobPath(fileID string) string {
	if len(fileID) < 2 {
		return filepath.Join(c.backupRoot, fileID)
	}
	return filepath.Join(c.backupRoot, fileID[:2], fileID)
}

// Close closes the database and removes the private copy.
func (c *Catalog) Close() error {
	err := c.db.Close()
	if c.copyPath != "" {
		os.Remove(c.copyPath)
	}
	return err
}

// Compile-time check that Catalog implements extract.Catalog
var _ extract.Catalog = (*Catalog)(nil)
