// Package exif recovers capture times from image content. It backs the
// optional fallback used when a record's metadata blob has no timestamps.
package exif

import (
	"errors"
	"io"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"

	"ibex-go/internal/extract"
)

type Reader struct{}

// CaptureTime returns DateTimeOriginal when present, falling back to the
// generic EXIF datetime. Times are interpreted in the local timezone, the
// same convention the metadata decoder uses.
func (Reader) CaptureTime(r io.Reader) (time.Time, error) {
	x, err := goexif.Decode(r)
	if err != nil {
		return time.Time{}, err
	}

	if tag, err := x.Get(goexif.DateTimeOriginal); err == nil {
		if str, err := tag.StringVal(); err == nil {
			if parsed, err := time.ParseInLocation("2006:01:02 15:04:05", str, time.Local); err == nil {
				return parsed, nil
			}
		}
	}

	if parsed, err := x.DateTime(); err == nil {
		return parsed, nil
	}

	return time.Time{}, errors.New("exif datetime not found")
}

// Compile-time check that Reader implements extract.ExifReader
var _ extract.ExifReader = Reader{}
