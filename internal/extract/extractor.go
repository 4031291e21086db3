package extract

import (
	"fmt"
	"path/filepath"
	"time"
)

// Extractor is the orchestration layer: it walks the catalog in order and
// drives each record through classify → decode → filter → resolve → copy.
// It is strictly sequential; the dedup step depends on observing and then
// creating filesystem state without interleaved writers.
type Extractor struct {
	catalog  Catalog
	fs       FS
	decoder  MetadataDecoder
	exif     ExifReader // nil unless the EXIF fallback is enabled
	trash    TrashSet
	reporter Reporter
	logger   Logger
	opts     Options
}

// NewExtractor creates an Extractor with the provided dependencies.
// trash may be empty; exif may be nil.
func NewExtractor(catalog Catalog, fs FS, decoder MetadataDecoder, exif ExifReader, trash TrashSet, reporter Reporter, logger Logger, opts Options) *Extractor {
	return &Extractor{
		catalog:  catalog,
		fs:       fs,
		decoder:  decoder,
		exif:     exif,
		trash:    trash,
		reporter: reporter,
		logger:   logger,
		opts:     opts,
	}
}

// Run executes one extraction pass over the catalog. Copy failures abort
// the run; files copied before the failure remain in place and a re-run
// picks up where it left off, relying on dedup idempotence.
func (e *Extractor) Run() (Summary, error) {
	resolver := NewResolver(e.fs, e.opts.OutputRoot, e.opts.Layout, e.opts.PrependDate, e.opts.DateSeparator)

	var sum Summary
	index := 0

	err := e.catalog.ForEachMediaRecord(func(rec Record) error {
		c := Classify(rec.RelativePath)
		if !c.Eligible {
			sum.Ineligible++
			e.logger.Debug("ineligible record", "path", rec.RelativePath, "reason", c.Reason)
			return nil
		}
		index++

		ts, err := e.decoder.Decode(rec.Metadata)
		if err != nil {
			// Malformed metadata degrades to absent timestamps.
			e.logger.Warn("metadata decode failed", "path", rec.RelativePath, "error", err)
			ts = Timestamps{}
		}

		inTrash := e.trash.Contains(rec.RelativePath)
		name := CandidateFilename(c, inTrash && e.opts.IncludeTrashed)
		if inTrash && !e.opts.IncludeTrashed {
			sum.Trashed++
			e.reporter.Record(index, rec.FileID, name, MarkerTrashed)
			return nil
		}

		if e.opts.Since != nil && ts.LastModified != nil && DateOf(*ts.LastModified).Before(*e.opts.Since) {
			sum.TooOld++
			e.reporter.Record(index, rec.FileID, name, MarkerTooOld)
			return nil
		}

		// The recovered capture time feeds layout, prefix and stamping only;
		// the since filter sees catalog metadata alone.
		src := e.catalog.BlobPath(rec.FileID)
		if ts.LastModified == nil && e.exif != nil {
			ts.LastModified = e.exifFallback(src, rec.RelativePath)
		}

		rel, duplicate, err := resolver.Resolve(src, name, ts)
		if err != nil {
			return fmt.Errorf("resolving destination for %s: %w", rec.RelativePath, err)
		}
		if duplicate {
			sum.Duplicates++
			e.reporter.Record(index, rec.FileID, name, MarkerDuplicate)
			return nil
		}

		if !e.opts.DryRun {
			dest := filepath.Join(e.opts.OutputRoot, filepath.FromSlash(rel))
			if err := e.fs.MkdirAll(filepath.Dir(dest)); err != nil {
				return fmt.Errorf("creating destination directory: %w", err)
			}
			if err := e.fs.CopyFile(src, dest); err != nil {
				return fmt.Errorf("copying %s: %w", rec.RelativePath, err)
			}
			if ts.LastModified != nil || ts.Birth != nil {
				if err := e.fs.Stamp(dest, ts); err != nil {
					e.logger.Debug("timestamp stamping failed", "path", dest, "error", err)
				}
			}
		}

		sum.Copied++
		e.reporter.Record(index, rec.FileID, name, rel)
		return nil
	})
	if err != nil {
		return sum, err
	}

	e.logger.Info("extraction complete",
		"copied", sum.Copied,
		"duplicates", sum.Duplicates,
		"trashed", sum.Trashed,
		"too_old", sum.TooOld,
		"ineligible", sum.Ineligible,
		"dry_run", e.opts.DryRun,
	)
	return sum, nil
}

// exifFallback tries to recover a capture time from the blob's EXIF data.
func (e *Extractor) exifFallback(src, logicalPath string) *time.Time {
	f, err := e.fs.Open(src)
	if err != nil {
		e.logger.Debug("exif fallback: opening blob failed", "path", logicalPath, "error", err)
		return nil
	}
	defer f.Close()

	t, err := e.exif.CaptureTime(f)
	if err != nil {
		e.logger.Debug("exif fallback: no capture time", "path", logicalPath, "error", err)
		return nil
	}
	return &t
}
