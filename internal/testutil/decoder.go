package testutil

import (
	"time"

	"ibex-go/internal/extract"
)

// FakeDecoder maps blob content to fixed timestamps. Unknown or empty
// blobs decode to absent timestamps, like the real decoder.
type FakeDecoder struct {
	ByBlob map[string]extract.Timestamps
}

func (d *FakeDecoder) Decode(blob []byte) (extract.Timestamps, error) {
	if len(blob) == 0 {
		return extract.Timestamps{}, nil
	}
	return d.ByBlob[string(blob)], nil
}

// TimePtr is a convenience for building Timestamps literals.
func TimePtr(t time.Time) *time.Time { return &t }

// Compile-time check that FakeDecoder implements extract.MetadataDecoder
var _ extract.MetadataDecoder = (*FakeDecoder)(nil)
