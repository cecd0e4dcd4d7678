package diagfmt

import "ffigen/internal/diag"

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max            int // truncates the output, not the Bag
	MinSeverity    diag.Severity
	IncludeNotes   bool
	IncludeTimings bool
	// Fallback names the location of diagnostics without a position.
	Fallback string
}
