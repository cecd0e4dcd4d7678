package diagfmt

import (
	"encoding/json"
	"io"

	"ffigen/internal/diag"
	"ffigen/internal/source"
)

// LocationJSON is a position in a header file.
type LocationJSON struct {
	File string `json:"file"`
	Line uint32 `json:"line,omitempty"`
	Col  uint32 `json:"col,omitempty"`
}

// NoteJSON is an additional note attached to a diagnostic.
type NoteJSON struct {
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

// DiagnosticJSON is one diagnostic.
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
}

// DiagnosticsOutput is the diagnostics of one snapshot.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(pos source.Pos, fs *source.FileSet, fallback string) *LocationJSON {
	if fs != nil && pos.IsValid() {
		if f := fs.Get(pos.File); f != nil {
			return &LocationJSON{File: f.Path, Line: pos.Line, Col: pos.Col}
		}
	}
	if fallback == "" {
		return nil
	}
	return &LocationJSON{File: fallback}
}

// BuildDiagnosticsOutput builds the JSON structure without serializing it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := Sorted(bag)
	diagnostics := make([]DiagnosticJSON, 0, len(items))
	for _, d := range items {
		if opts.Max > 0 && len(diagnostics) >= opts.Max {
			break
		}
		if d.Severity < opts.MinSeverity {
			continue
		}
		timings := d.Code == diag.ObsTimings
		if timings && !opts.IncludeTimings {
			continue
		}
		diagJSON := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.Fallback),
		}
		if (opts.IncludeNotes || timings) && len(d.Notes) > 0 {
			diagJSON.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				diagJSON.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Pos, fs, "")}
			}
		}
		diagnostics = append(diagnostics, diagJSON)
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// JSON writes the diagnostics of several snapshots keyed by snapshot path.
func JSON(w io.Writer, outputs map[string]DiagnosticsOutput) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(outputs)
}
