// Package presentation renders user-facing output: per-record progress
// lines and the backup listing.
package presentation

import (
	"fmt"
	"io"

	"ibex-go/internal/extract"
)

// ProgressPrinter emits one line per processed record:
//
//	<index>. (<storageKey>) <derivedName> → <outcome>
//
// where outcome is a relative destination path or a skip marker. The format
// is part of the output contract; keep it stable.
type ProgressPrinter struct {
	W io.Writer
}

func (p *ProgressPrinter) Record(index int, storageKey, name, outcome string) {
	fmt.Fprintf(p.W, "%d. (%s) %s → %s\n", index, storageKey, name, outcome)
}

// Compile-time check that ProgressPrinter implements extract.Reporter
var _ extract.Reporter = (*ProgressPrinter)(nil)
