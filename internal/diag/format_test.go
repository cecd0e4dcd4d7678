package diag

import (
	"testing"

	"ffigen/internal/source"
)

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	hdr := fs.Add("include/sample.h", 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     TypeUnsupported,
			Message:  "vector type\nreduced",
			Primary:  source.Pos{File: hdr, Line: 4, Col: 2},
		},
		{
			Severity: SevError,
			Code:     DeclInvalid,
			Message:  "anonymous record at top level",
			Primary:  source.Pos{File: hdr, Line: 1, Col: 1},
			Notes:    []Note{{Pos: source.Pos{File: hdr, Line: 2, Col: 5}, Msg: "declared here"}},
		},
		{
			Severity: SevError,
			Code:     IOLoadError,
			Message:  "cannot read",
		},
	}

	expected := "error IO5001 - cannot read\n" +
		"error DCL1001 include/sample.h:1:1 anonymous record at top level\n" +
		"note DCL1001 include/sample.h:2:5 declared here\n" +
		"warning TYP2001 include/sample.h:4:2 vector type reduced"

	if got := FormatShort(diags, fs, true); got != expected {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagLimitAndCount(t *testing.T) {
	b := NewBag(2)
	b.Add(New(SevWarning, TypeUnsupported, source.Pos{}, "a"))
	b.Add(New(SevWarning, TypeUnsupported, source.Pos{}, "b"))
	if b.Add(New(SevError, DeclInvalid, source.Pos{}, "c")) {
		t.Fatal("expected bag to be full")
	}
	if b.HasErrors() || !b.HasWarnings() || b.Count(TypeUnsupported) != 2 {
		t.Fatalf("unexpected bag state: %+v", b.Items())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	pos := source.Pos{File: 1, Line: 3, Col: 1}
	ReportWarning(r, TypeUnsupported, pos, "same").Emit()
	ReportWarning(r, TypeUnsupported, pos, "same").Emit()
	ReportWarning(r, TypeUnsupported, pos, "other").Emit()
	if bag.Len() != 2 || r.Suppressed() != 1 {
		t.Fatalf("expected 2 diagnostics and 1 duplicate, got %d and %d", bag.Len(), r.Suppressed())
	}
}
