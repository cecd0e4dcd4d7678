package diag

// Severity ranks diagnostics; higher values are worse.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	// SevError fails the snapshot when the run asks to fail on errors.
	SevError
)

var severityNames = [...]string{"info", "warning", "error"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}
