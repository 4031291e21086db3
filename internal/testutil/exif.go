package testutil

import (
	"io"
	"time"

	"ibex-go/internal/extract"
)

// FakeExifReader returns a fixed capture time, or Err when set.
type FakeExifReader struct {
	Time time.Time
	Err  error

	// Calls counts CaptureTime invocations.
	Calls int
}

func (r *FakeExifReader) CaptureTime(io.Reader) (time.Time, error) {
	r.Calls++
	if r.Err != nil {
		return time.Time{}, r.Err
	}
	return r.Time, nil
}

// Compile-time check that FakeExifReader implements extract.ExifReader
var _ extract.ExifReader = (*FakeExifReader)(nil)
