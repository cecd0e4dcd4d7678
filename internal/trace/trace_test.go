package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelAllows(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeUnit, false},
		{LevelDetail, ScopeUnit, true},
		{LevelDetail, ScopeDecl, false},
		{LevelDebug, ScopeDecl, true},
	}
	for _, tc := range cases {
		if got := tc.level.Allows(tc.scope); got != tc.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Errorf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("ParseLevel accepted an unknown level")
	}
}

func TestStreamTracerSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, pass := Start(ctx, ScopePass, "harvest")
	_, unit := Start(WithUnit(ctx, "a.astpack"), ScopeUnit, "harvest_snapshot")
	unit.Set("decls", "3").Set("records", "1").End("ok")
	Point(ctx, ScopeDecl, "decl", "filtered by level")
	pass.End("")

	out := buf.String()
	for _, want := range []string{"→ harvest", "[a.astpack]   → harvest_snapshot", "← harvest_snapshot (ok) {decls=3, records=1}", "← harvest\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "filtered by level") {
		t.Errorf("decl-scope point leaked at detail level:\n%s", out)
	}
}

func TestSpansNest(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	ctx, outer := Start(ctx, ScopeDriver, "generate_all")
	Point(ctx, ScopeDecl, "function", "puts")
	outer.End("")

	evs := ring.Snapshot()
	if len(evs) != 3 {
		t.Fatalf("events = %+v", evs)
	}
	if evs[1].ParentID != outer.ID() || evs[0].ParentID != 0 {
		t.Errorf("point is not nested under the span: %+v", evs)
	}
	if !(evs[0].Seq < evs[1].Seq && evs[1].Seq < evs[2].Seq) {
		t.Errorf("sequence numbers are not increasing: %+v", evs)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeDecl, Name: name})
	}
	evs := r.Snapshot()
	if len(evs) != 2 || evs[0].Name != "b" || evs[1].Name != "c" {
		t.Fatalf("snapshot = %+v", evs)
	}

	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("dump lines = %d, want 2", len(lines))
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil || decoded["name"] != "c" {
		t.Errorf("bad NDJSON line %q: %v", lines[1], err)
	}
}

func TestNewModes(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if RingOf(tr) == nil {
		t.Fatal("expected a ring behind ModeBoth")
	}
	tr.Emit(&Event{Kind: KindPoint, Scope: ScopeDriver, Name: "x"})
	if buf.Len() == 0 || len(RingOf(tr).Snapshot()) != 1 {
		t.Fatal("ModeBoth must write to both sinks")
	}
	if RingOf(Nop) != nil {
		t.Fatal("nop tracer has no ring")
	}
	off, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || off.Enabled() {
		t.Fatalf("LevelOff tracer = %v, %v", off, err)
	}
	quiet, err := New(Config{Level: LevelError, Mode: ModeBoth, Output: &buf})
	if err != nil || RingOf(quiet) == nil || !quiet.Level().Allows(ScopeUnit) {
		t.Fatalf("LevelError tracer = %v, %v", quiet, err)
	}
	if f := (Config{OutputPath: "run.ndjson"}).format(); f != FormatNDJSON {
		t.Errorf("format from .ndjson path = %v", f)
	}
}

func TestNopByDefault(t *testing.T) {
	if FromContext(context.Background()).Enabled() {
		t.Fatal("tracing enabled without a tracer")
	}
	_, span := Start(context.Background(), ScopePass, "x")
	if span.ID() != 0 || span.Set("k", "v").End("") != 0 {
		t.Fatal("nop span produced output")
	}
}

func TestHeartbeat(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	stop := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(5 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()
	stop()
	evs := ring.Snapshot()
	if len(evs) == 0 || evs[0].Kind != KindHeartbeat || evs[0].Detail != "#1" {
		t.Fatalf("heartbeats = %+v", evs)
	}
	StartHeartbeat(Nop, time.Millisecond)()
}
