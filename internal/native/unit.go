package native

import "ffigen/internal/source"

// LangStandard is the language dialect a translation unit was parsed in.
type LangStandard uint8

const (
	LangC LangStandard = iota
	LangObjC
	LangCXX98
	LangCXX11
	LangCXX14
	LangCXX17
	LangCXX20
	LangObjCXX
)

var langNames = [...]string{
	LangC:      "c",
	LangObjC:   "objc",
	LangCXX98:  "c++98",
	LangCXX11:  "c++11",
	LangCXX14:  "c++14",
	LangCXX17:  "c++17",
	LangCXX20:  "c++20",
	LangObjCXX: "objc++",
}

func (l LangStandard) String() string {
	if int(l) < len(langNames) {
		return langNames[l]
	}
	return "unknown"
}

// LangByName parses a language standard name; ok is false for unknown names.
func LangByName(name string) (LangStandard, bool) {
	for i, n := range langNames {
		if n == name {
			return LangStandard(i), true
		}
	}
	return LangC, false
}

// IsCXX reports whether the unit was parsed as C++.
func (l LangStandard) IsCXX() bool {
	return l >= LangCXX98 && l <= LangObjCXX
}

// DiagSeverity is the severity the frontend gave a diagnostic.
type DiagSeverity uint8

const (
	DiagNote DiagSeverity = iota
	DiagWarning
	DiagError
	DiagFatal
)

func (s DiagSeverity) String() string {
	switch s {
	case DiagWarning:
		return "warning"
	case DiagError:
		return "error"
	case DiagFatal:
		return "fatal"
	default:
		return "note"
	}
}

// Diagnostic is a message the frontend emitted while parsing. DeclIndex is
// the index of the first top-level declaration the frontend had not yet
// delivered when the message was issued; -1 when unknown.
type Diagnostic struct {
	Severity  DiagSeverity
	Pos       source.Pos
	Message   string
	DeclIndex int
}

// TranslationUnit is one parsed source file with everything it included.
type TranslationUnit struct {
	Lang   LangStandard
	Target string
	// MainFile is the path of the file the frontend was invoked on.
	MainFile string
	Files    *source.FileSet
	Decls    []Decl
	// Macros maps macro names to their definition positions.
	Macros      map[string]source.Pos
	Diagnostics []Diagnostic
}

// NewTranslationUnit returns an empty unit with an initialized file set.
func NewTranslationUnit(lang LangStandard, target string) *TranslationUnit {
	return &TranslationUnit{
		Lang:   lang,
		Target: target,
		Files:  source.NewFileSet(),
		Macros: make(map[string]source.Pos),
	}
}

// FatalIndex returns the declaration index at which the first fatal frontend
// diagnostic was recorded, or -1 when none was. A fatal diagnostic without
// a position in the declaration stream stops the unit at its start.
func (tu *TranslationUnit) FatalIndex() int {
	for _, d := range tu.Diagnostics {
		if d.Severity != DiagFatal {
			continue
		}
		if d.DeclIndex < 0 {
			return 0
		}
		return d.DeclIndex
	}
	return -1
}

// HasErrors reports whether the frontend recorded any error or fatal error.
func (tu *TranslationUnit) HasErrors() bool {
	for _, d := range tu.Diagnostics {
		if d.Severity >= DiagError {
			return true
		}
	}
	return false
}
