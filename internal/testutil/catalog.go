package testutil

import (
	"path/filepath"
	"sort"

	"ibex-go/internal/extract"
)

// FakeCatalog serves records from memory, ordered by RelativePath like the
// real catalog. Blob paths resolve under the Blobs root.
type FakeCatalog struct {
	Records []extract.Record
	Blobs   string // defaults to "blobs"
}

func (c *FakeCatalog) ForEachMediaRecord(fn func(extract.Record) error) error {
	records := append([]extract.Record(nil), c.Records...)
	sort.Slice(records, func(i, j int) bool {
		return records[i].RelativePath < records[j].RelativePath
	})
	for _, rec := range records {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (c *FakeCatalog) BlobPath(fileID string) string {
	root := c.Blobs
	if root == "" {
		root = "blobs"
	}
	return filepath.Join(root, fileID)
}

// Compile-time check that FakeCatalog implements extract.Catalog
var _ extract.Catalog = (*FakeCatalog)(nil)
