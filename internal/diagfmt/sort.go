package diagfmt

import (
	"slices"

	"ffigen/internal/diag"
)

// Sorted returns the diagnostics of bag ordered by position, errors first
// within one position. The bag itself is left untouched.
func Sorted(bag *diag.Bag) []diag.Diagnostic {
	if bag == nil {
		return nil
	}
	items := slices.Clone(bag.Items())
	slices.SortStableFunc(items, func(a, b diag.Diagnostic) int {
		switch {
		case a.Primary.Before(b.Primary):
			return -1
		case b.Primary.Before(a.Primary):
			return 1
		}
		return int(b.Severity) - int(a.Severity)
	})
	return items
}
