package extract

import (
	"fmt"
	"time"
)

// Record is one row of the backup's file catalog, restricted to the media
// domain. Records are immutable snapshots read once per run.
type Record struct {
	FileID       string // content-addressing key; the first two characters name the shard directory
	RelativePath string // slash-separated logical path as recorded at backup time
	Metadata     []byte // embedded keyed-archive blob; may be empty
}

// Timestamps holds the instants recovered from a record's metadata blob.
// Either field may be nil; absence is a valid, expected state.
type Timestamps struct {
	LastModified *time.Time
	Birth        *time.Time
}

// TrashSet is the set of logical paths known to be marked deleted in the
// companion asset database. Built once per run, read-only thereafter.
type TrashSet map[string]struct{}

func (s TrashSet) Contains(path string) bool {
	_, ok := s[path]
	return ok
}

// Layout selects the destination subdirectory scheme.
type Layout string

const (
	LayoutFlat Layout = "flat"
	LayoutYM   Layout = "ym"
	LayoutYMD  Layout = "ymd"
)

// ParseLayout validates a layout name from config or flags.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutFlat, LayoutYM, LayoutYMD:
		return Layout(s), nil
	}
	return "", fmt.Errorf("invalid layout %q (want flat, ym or ymd)", s)
}

// Separator selects the style of the optional date prefix on filenames.
type Separator string

const (
	SeparatorDash       Separator = "dash"
	SeparatorUnderscore Separator = "underscore"
	SeparatorNone       Separator = "none"
)

// ParseSeparator validates a separator name from config or flags.
func ParseSeparator(s string) (Separator, error) {
	switch Separator(s) {
	case SeparatorDash, SeparatorUnderscore, SeparatorNone:
		return Separator(s), nil
	}
	return "", fmt.Errorf("invalid date separator %q (want dash, underscore or none)", s)
}

// prefixFormat returns the time layout for the filename date prefix.
func (s Separator) prefixFormat() string {
	switch s {
	case SeparatorUnderscore:
		return "2006_01_02_"
	case SeparatorNone:
		return "20060102_"
	default:
		return "2006-01-02_"
	}
}

// Date is a calendar day, used for the since filter. Comparison ignores
// time of day by construction.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates an instant to its calendar day in local time.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Progress line markers for skipped records.
const (
	MarkerTrashed   = "<IN_TRASH>"
	MarkerDuplicate = "<DUPLICATE>"
	MarkerTooOld    = "<TOO_OLD>"
)

// Options configure a single extraction run. All values are validated by
// the caller before the run starts.
type Options struct {
	OutputRoot     string
	Layout         Layout
	Since          *Date
	IncludeTrashed bool
	DryRun         bool
	PrependDate    bool
	DateSeparator  Separator
}

// Summary counts per-outcome results across a run.
type Summary struct {
	Copied     int
	Duplicates int
	Trashed    int
	TooOld     int
	Ineligible int
}
