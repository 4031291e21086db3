// Package trash builds the set of logical paths marked deleted on-device,
// from the companion asset database carried inside the backup.
package trash

import (
	"database/sql"
	"os"

	"ibex-go/internal/catalog"
	"ibex-go/internal/extract"
	"ibex-go/internal/fs"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// assetDBPath is the logical path of the asset database within the media domain.
const assetDBPath = "Media/PhotoData/Photos.sqlite"

// AssetLocator is the slice of the catalog needed to find the asset
// database blob inside the backup.
type AssetLocator interface {
	LookupPath(domain, relativePath string) (extract.Record, bool, error)
	BlobPath(fileID string) string
}

// BuildSet returns the set of trashed logical paths, keyed to match the
// catalog's path convention (Media/<directory>/<filename>).
//
// Trashed-file detection is an enhancement, not a core guarantee: a missing
// asset database, a missing table, or any query failure degrades to an
// empty set with a diagnostic, never a failed run.
func BuildSet(loc AssetLocator, logger extract.Logger) extract.TrashSet {
	set := extract.TrashSet{}

	rec, ok, err := loc.LookupPath(catalog.MediaDomain, assetDBPath)
	if err != nil || !ok {
		logger.Debug("asset database not present in catalog", "path", assetDBPath, "error", err)
		return set
	}

	copyPath, err := fs.TempCopy(loc.BlobPath(rec.FileID), "ibex-assets-*.sqlite")
	if err != nil {
		logger.Debug("copying asset database failed", "error", err)
		return set
	}
	defer os.Remove(copyPath)

	db, err := sql.Open("sqlite3", "file:"+copyPath+"?mode=ro&immutable=1")
	if err != nil {
		logger.Debug("opening asset database failed", "error", err)
		return set
	}
	defer db.Close()

	rows, err := db.Query(`SELECT ZDIRECTORY, ZFILENAME FROM ZASSET WHERE ZTRASHEDSTATE = 1`)
	if err != nil {
		logger.Debug("querying asset database failed", "error", err)
		return set
	}
	defer rows.Close()

	for rows.Next() {
		var dir, name sql.NullString
		if err := rows.Scan(&dir, &name); err != nil {
			logger.Debug("scanning asset row failed", "error", err)
			return set
		}
		if dir.Valid && name.Valid {
			set["Media/"+dir.String+"/"+name.String] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		logger.Debug("reading asset database failed", "error", err)
	}
	return set
}
