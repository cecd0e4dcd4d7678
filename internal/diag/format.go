package diag

import (
	"fmt"
	"sort"
	"strings"

	"ffigen/internal/source"
)

// FormatShort renders diagnostics one per line as
// "severity CODE path:line:col message", sorted by position. Diagnostics
// without a position render "-" in place of the location.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	type line struct {
		pos  source.Pos
		sev  Severity
		text string
	}
	lines := make([]line, 0, len(diags))
	for _, d := range diags {
		lines = append(lines, line{
			pos:  d.Primary,
			sev:  d.Severity,
			text: fmt.Sprintf("%s %s %s %s", severityLabel(d.Severity), d.Code.ID(), renderPos(fs, d.Primary), sanitizeMessage(d.Message)),
		})
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			lines = append(lines, line{
				pos:  n.Pos,
				sev:  d.Severity,
				text: fmt.Sprintf("note %s %s %s", d.Code.ID(), renderPos(fs, n.Pos), sanitizeMessage(n.Msg)),
			})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].pos != lines[j].pos {
			return lines[i].pos.Before(lines[j].pos)
		}
		return lines[i].sev > lines[j].sev
	})
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.text)
	}
	return strings.Join(parts, "\n")
}

func renderPos(fs *source.FileSet, pos source.Pos) string {
	if loc := fs.Render(pos); loc != "" {
		return loc
	}
	return "-"
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
