package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ffigen/internal/driver"
)

func TestProgressModelTracksEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("ffigen gen", []string{"a.json", "b.json", "c.json"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "a.json", Stage: driver.StageHarvest, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "b.json", Stage: driver.StageEmit, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "c.json", Stage: driver.StageLoad, Status: driver.StatusError, Err: errors.New("bad magic")})
	m.applyEvent(driver.Event{File: "unknown.json", Stage: driver.StageLoad, Status: driver.StatusWorking})

	labels := []string{m.rows[0].label(), m.rows[1].label(), m.rows[2].label()}
	if strings.Join(labels, ",") != "harvesting,done,error" {
		t.Fatalf("labels = %v", labels)
	}
	if got := m.percent(); got != (0.4+1+1)/3 {
		t.Fatalf("percent = %v", got)
	}
	if finished, failed := m.counts(); finished != 2 || failed != 1 {
		t.Fatalf("counts = %d, %d", finished, failed)
	}

	view := m.View()
	for _, want := range []string{"a.json", "harvesting", "2/3", "1 failed", "bad magic"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}

	m.applyEvent(driver.Event{Stage: driver.StageEmit, Status: driver.StatusDone, Elapsed: 1500 * time.Millisecond})
	m.done = true
	if view := m.View(); !strings.Contains(view, "done: ffigen gen") || !strings.Contains(view, "1.5s") {
		t.Fatalf("final view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	got := truncate("a/very/long/snapshot/path.json", 12)
	if len(got) > 12 || !strings.HasSuffix(got, "...") || !strings.HasPrefix(got, "a/very") {
		t.Fatalf("got %q", got)
	}
}
