package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ffigen/internal/diag"
	"ffigen/internal/diagfmt"
	"ffigen/internal/driver"
	"ffigen/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	codeColor    = color.New(color.Faint)
	locColor     = color.New(color.Bold)
)

func severityLabel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return errorColor.Sprint("error")
	case diag.SevWarning:
		return warningColor.Sprint("warning")
	default:
		return infoColor.Sprint("info")
	}
}

func renderPos(fs *source.FileSet, pos source.Pos) string {
	if fs != nil {
		if loc := fs.Render(pos); loc != "" {
			return loc
		}
	}
	return "-"
}

// printDiagnostics renders the diagnostics of a result, one per line:
// "path:line:col: severity [CODE] message". quiet keeps only errors.
func printDiagnostics(w io.Writer, res *driver.Result, quiet bool) {
	if res == nil || res.Bag == nil {
		return
	}
	items := diagfmt.Sorted(res.Bag)
	for _, d := range items {
		if d.Code == diag.ObsTimings || (quiet && d.Severity < diag.SevError) {
			continue
		}
		loc := renderPos(res.Files, d.Primary)
		if loc == "-" {
			loc = res.Path
		}
		fmt.Fprintf(w, "%s: %s %s %s\n", locColor.Sprint(loc), severityLabel(d.Severity), codeColor.Sprintf("[%s]", d.Code.ID()), d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s: note: %s\n", renderPos(res.Files, n.Pos), n.Msg)
		}
	}
}

func printTimings(w io.Writer, res *driver.Result) {
	if res == nil {
		return
	}
	fmt.Fprintf(w, "%s:\n", res.Path)
	for _, p := range res.Timing.Phases {
		fmt.Fprintf(w, "  %-8s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(w, "  // %s", p.Note)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %-8s %7.2f ms\n", "total", res.Timing.TotalMS)
}

// diagSink prints diagnostics as text right away or collects them for one
// JSON document written by flush.
type diagSink struct {
	w         io.Writer
	json      bool
	quiet     bool
	max       int
	collected map[string]diagfmt.DiagnosticsOutput
}

func newDiagSink(cmd *cobra.Command) (*diagSink, error) {
	pf := cmd.Root().PersistentFlags()
	format, err := pf.GetString("diag-format")
	if err != nil {
		return nil, err
	}
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return nil, err
	}
	maxDiags, err := pf.GetInt("max-diagnostics")
	if err != nil {
		return nil, err
	}
	s := &diagSink{w: cmd.ErrOrStderr(), quiet: quiet, max: maxDiags}
	switch format {
	case "text":
	case "json":
		s.json = true
		s.collected = make(map[string]diagfmt.DiagnosticsOutput)
	default:
		return nil, fmt.Errorf("invalid --diag-format value %q (expected text|json)", format)
	}
	return s, nil
}

func (s *diagSink) add(res *driver.Result) {
	if res == nil {
		return
	}
	if !s.json {
		printDiagnostics(s.w, res, s.quiet)
		return
	}
	opts := diagfmt.JSONOpts{Max: s.max, IncludeNotes: true, IncludeTimings: true, Fallback: res.Path}
	if s.quiet {
		opts.MinSeverity = diag.SevError
	}
	s.collected[res.Path] = diagfmt.BuildDiagnosticsOutput(res.Bag, res.Files, opts)
}

func (s *diagSink) flush() error {
	if !s.json {
		return nil
	}
	return diagfmt.JSON(s.w, s.collected)
}
