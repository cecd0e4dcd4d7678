// Package observ measures the phases of a snapshot run.
package observ

import (
	"encoding/json"
	"fmt"
	"time"

	"ffigen/internal/diag"
	"ffigen/internal/source"
)

// Timer records the phases of one snapshot run. It is not safe for
// concurrent use; each run owns its timer.
type Timer struct {
	phases []phase
}

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
	open  bool
}

func NewTimer() *Timer { return &Timer{phases: make([]phase, 0, 4)} }

// Phase starts a phase and returns the function that ends it with a note.
// Ending a phase twice keeps the first duration.
func (t *Timer) Phase(name string) func(note string) {
	t.phases = append(t.phases, phase{name: name, start: time.Now(), open: true})
	idx := len(t.phases) - 1
	return func(note string) {
		p := &t.phases[idx]
		if !p.open {
			return
		}
		p.open = false
		p.dur = time.Since(p.start)
		p.note = note
	}
}

// PhaseReport is the serializable form of one phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is what a timer measured. Phases still open count as zero.
type Report struct {
	Path    string        `json:"path,omitempty"`
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		total += p.dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.dur), Note: p.note})
	}
	r.TotalMS = millis(total)
	return r
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Diagnostic packs r into an ObsTimings info diagnostic. The first note
// carries r as JSON for machine consumers; one note per phase follows.
func (r Report) Diagnostic() diag.Diagnostic {
	msg := fmt.Sprintf("timings: total %.2f ms", r.TotalMS)
	if r.Path != "" {
		msg += ": " + r.Path
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Pos{}, msg)
	if data, err := json.Marshal(r); err == nil {
		d = d.WithNote(source.Pos{}, string(data))
	}
	for _, p := range r.Phases {
		text := fmt.Sprintf("%s %.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			text += " (" + p.Note + ")"
		}
		d = d.WithNote(source.Pos{}, text)
	}
	return d
}
