package observ

import (
	"encoding/json"
	"testing"
	"time"

	"ffigen/internal/diag"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	endLoad := tm.Phase("load")
	time.Sleep(time.Millisecond)
	endLoad("cache hit")
	endLoad("ignored")
	tm.Phase("harvest")("")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "load" || r.Phases[0].Note != "cache hit" {
		t.Fatalf("unexpected report %+v", r)
	}
	if r.Phases[0].DurationMS <= 0 || r.TotalMS < r.Phases[0].DurationMS {
		t.Fatalf("durations not accumulated: %+v", r)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("empty timer should report nothing, got %+v", r)
	}
}

func TestReportDiagnostic(t *testing.T) {
	r := Report{Path: "api.json", TotalMS: 3, Phases: []PhaseReport{
		{Name: "load", DurationMS: 1},
		{Name: "harvest", DurationMS: 2, Note: "4 decls"},
	}}
	d := r.Diagnostic()
	if d.Code != diag.ObsTimings || d.Severity != diag.SevInfo || d.Message != "timings: total 3.00 ms: api.json" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if len(d.Notes) != 3 || d.Notes[2].Msg != "harvest 2.00 ms (4 decls)" {
		t.Fatalf("notes = %+v", d.Notes)
	}
	var decoded Report
	if err := json.Unmarshal([]byte(d.Notes[0].Msg), &decoded); err != nil || len(decoded.Phases) != 2 {
		t.Fatalf("first note is not the JSON report: %v %q", err, d.Notes[0].Msg)
	}
}
