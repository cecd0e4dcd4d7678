package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"ffigen/internal/diag"
	"ffigen/internal/source"
)

func testBag() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	file := fs.Add("api.hpp", 0)
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.TypeUnsupported, source.Pos{File: file, Line: 9, Col: 3}, "vector type reduced"))
	bag.Add(diag.NewError(diag.FrontendError, source.Pos{File: file, Line: 2, Col: 1}, "unknown type name").
		WithNote(source.Pos{File: file, Line: 1, Col: 1}, "included here"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Pos{}, "timings").WithNote(source.Pos{}, "load 1.00 ms"))
	return bag, fs
}

func TestBuildDiagnosticsOutput(t *testing.T) {
	bag, fs := testBag()
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Fallback: "api.json"})
	if out.Count != 2 {
		t.Fatalf("count = %d, want 2 (timings are skipped)", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Severity != "error" || first.Code != "FE4001" || first.Location.Line != 2 {
		t.Fatalf("diagnostics are not sorted by position: %+v", first)
	}
	if len(first.Notes) != 0 {
		t.Fatalf("notes must be opt-in")
	}

	out = BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeNotes: true, IncludeTimings: true, Fallback: "api.json"})
	if out.Count != 3 || len(out.Diagnostics[0].Notes) != 1 {
		t.Fatalf("unexpected output %+v", out)
	}
	timings := out.Diagnostics[0]
	for _, d := range out.Diagnostics {
		if d.Code == "OBS7001" {
			timings = d
		}
	}
	if timings.Location == nil || timings.Location.File != "api.json" || timings.Location.Line != 0 {
		t.Fatalf("positionless diagnostics use the fallback location: %+v", timings.Location)
	}

	out = BuildDiagnosticsOutput(bag, fs, JSONOpts{MinSeverity: diag.SevError})
	if out.Count != 1 {
		t.Fatalf("MinSeverity kept %d diagnostics", out.Count)
	}
	out = BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || bag.Len() != 3 {
		t.Fatalf("Max must truncate only the output")
	}
}

func TestJSON(t *testing.T) {
	bag, fs := testBag()
	var buf bytes.Buffer
	err := JSON(&buf, map[string]DiagnosticsOutput{"api.json": BuildDiagnosticsOutput(bag, fs, JSONOpts{})})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded map[string]DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded["api.json"].Count != 2 {
		t.Fatalf("decoded %+v", decoded)
	}
}

func TestSortedNilBag(t *testing.T) {
	if Sorted(nil) != nil {
		t.Fatalf("nil bag yields diagnostics")
	}
	if out := BuildDiagnosticsOutput(nil, nil, JSONOpts{}); out.Count != 0 || out.Diagnostics == nil {
		t.Fatalf("nil bag output = %+v", out)
	}
}
