// Package metadata decodes the per-file keyed-archive blob embedded in the
// backup's file catalog into the timestamps the pipeline cares about.
package metadata

import (
	"fmt"
	"time"

	"howett.net/plist"

	"ibex-go/internal/extract"
)

// appleEpoch is the platform reference date: the numeric timestamp fields
// in the archive count seconds since 2001-01-01 00:00:00 UTC.
var appleEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// archive mirrors the top level of the keyed archive. Only the flat object
// table matters here; the timestamps live on its second element.
type archive struct {
	Objects []any `plist:"$objects"`
}

// Decoder is the typed decode step for record metadata. Shape validation is
// centralized here: any deviation from the expected archive layout yields
// absent timestamps and a diagnostic, never a failed run.
type Decoder struct {
	logger extract.Logger
}

func NewDecoder(logger extract.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode turns a metadata blob into optional timestamps. An empty blob is
// a valid record state and decodes to absent timestamps without error.
func (d *Decoder) Decode(blob []byte) (extract.Timestamps, error) {
	var ts extract.Timestamps
	if len(blob) == 0 {
		return ts, nil
	}

	var a archive
	if _, err := plist.Unmarshal(blob, &a); err != nil {
		return ts, fmt.Errorf("decoding metadata archive: %w", err)
	}

	if len(a.Objects) < 2 {
		d.logger.Warn("metadata archive has unexpected shape", "objects", len(a.Objects))
		return ts, nil
	}
	fields, ok := a.Objects[1].(map[string]any)
	if !ok {
		d.logger.Warn("metadata archive object table is not a dictionary", "type", fmt.Sprintf("%T", a.Objects[1]))
		return ts, nil
	}

	ts.LastModified = d.instant(fields, "LastModified")
	ts.Birth = d.instant(fields, "Birth")
	return ts, nil
}

// instant reads one numeric epoch-offset field, converted to local time.
func (d *Decoder) instant(fields map[string]any, key string) *time.Time {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	seconds, ok := numeric(raw)
	if !ok {
		d.logger.Warn("metadata field is not numeric", "field", key, "type", fmt.Sprintf("%T", raw))
		return nil
	}
	t := appleEpoch.Add(time.Duration(seconds) * time.Second).Local()
	return &t
}

func numeric(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// Compile-time check that Decoder implements extract.MetadataDecoder
var _ extract.MetadataDecoder = (*Decoder)(nil)
