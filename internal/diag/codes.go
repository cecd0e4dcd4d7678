package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Declaration construction
	DeclInfo             Code = 1000
	DeclInvalid          Code = 1001
	DeclInternalTemplate Code = 1002
	DeclDuplicate        Code = 1003

	// Type reduction
	TypeInfo        Code = 2000
	TypeUnsupported Code = 2001
	TypeLayout      Code = 2002

	// Identifier mangling
	MangleInfo               Code = 3000
	MangleAnonymousNamespace Code = 3001
	MangleAnonymousRecord    Code = 3002
	MangleInFunction         Code = 3003
	MangleAnonymousDecl      Code = 3004

	// Frontend-reported
	FrontendInfo    Code = 4000
	FrontendError   Code = 4001
	FrontendFatal   Code = 4002
	FrontendWarning Code = 4003

	// IO
	IOLoadError  Code = 5001
	IOWriteError Code = 5002

	// Snapshots and configuration
	SnapshotVersion     Code = 6001
	SnapshotMalformed   Code = 6002
	ConfigInvalid       Code = 6003
	TargetUnknown       Code = 6004
	SnapshotUnknownKind Code = 6005

	// Observability
	ObsTimings Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	DeclInfo:                 "Declaration information",
	DeclInvalid:              "Invalid declaration skipped",
	DeclInternalTemplate:     "Internal template specialization twin skipped",
	DeclDuplicate:            "Duplicate declaration skipped",
	TypeInfo:                 "Type information",
	TypeUnsupported:          "Unsupported type reduced to a placeholder",
	TypeLayout:               "Type layout unavailable",
	MangleInfo:               "Mangling information",
	MangleAnonymousNamespace: "Declaration in an anonymous namespace cannot be mangled",
	MangleAnonymousRecord:    "Declaration in an anonymous struct or class cannot be mangled",
	MangleInFunction:         "Declaration inside a function cannot be mangled",
	MangleAnonymousDecl:      "Anonymous declaration cannot be mangled",
	FrontendInfo:             "Frontend note",
	FrontendError:            "Frontend error",
	FrontendFatal:            "Fatal frontend error",
	FrontendWarning:          "Frontend warning",
	IOLoadError:              "I/O load error",
	IOWriteError:             "I/O write error",
	SnapshotVersion:          "Snapshot producer version not accepted",
	SnapshotMalformed:        "Malformed AST snapshot",
	ConfigInvalid:            "Invalid configuration",
	TargetUnknown:            "Unknown target triple",
	SnapshotUnknownKind:      "Unknown node kind in snapshot",
	ObsTimings:               "Phase timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("MNG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("FE%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("SNP%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
