package testutil

import "ibex-go/internal/extract"

// ReportedLine is one captured progress report.
type ReportedLine struct {
	Index   int
	Key     string
	Name    string
	Outcome string
}

// RecordingReporter captures progress reports for assertions.
type RecordingReporter struct {
	Lines []ReportedLine
}

func (r *RecordingReporter) Record(index int, storageKey, name, outcome string) {
	r.Lines = append(r.Lines, ReportedLine{Index: index, Key: storageKey, Name: name, Outcome: outcome})
}

// Compile-time check that RecordingReporter implements extract.Reporter
var _ extract.Reporter = (*RecordingReporter)(nil)
