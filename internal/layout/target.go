package layout

import "strings"

// Target describes the C ABI of a target triple. Sizes and alignments are
// in bytes.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  uint64
	PtrAlign uint64

	LongSize        uint64
	Int64Align      uint64 // alignment of long long and double
	LongDoubleSize  uint64
	LongDoubleAlign uint64
	WCharSize       uint64

	BigEndian bool
	// MSVC selects the Microsoft record layout rules for bit-fields.
	MSVC bool
}

// DefaultTriple is used when neither the snapshot nor the configuration
// names a target.
const DefaultTriple = "x86_64-linux-gnu"

func X86_64LinuxGNU() Target {
	return Target{
		Triple:          "x86_64-linux-gnu",
		PtrSize:         8,
		PtrAlign:        8,
		LongSize:        8,
		Int64Align:      8,
		LongDoubleSize:  16,
		LongDoubleAlign: 16,
		WCharSize:       4,
	}
}

func I686LinuxGNU() Target {
	return Target{
		Triple:          "i686-linux-gnu",
		PtrSize:         4,
		PtrAlign:        4,
		LongSize:        4,
		Int64Align:      4,
		LongDoubleSize:  12,
		LongDoubleAlign: 4,
		WCharSize:       4,
	}
}

func AArch64LinuxGNU() Target {
	return Target{
		Triple:          "aarch64-linux-gnu",
		PtrSize:         8,
		PtrAlign:        8,
		LongSize:        8,
		Int64Align:      8,
		LongDoubleSize:  16,
		LongDoubleAlign: 16,
		WCharSize:       4,
	}
}

func Arm64AppleDarwin() Target {
	return Target{
		Triple:          "arm64-apple-darwin",
		PtrSize:         8,
		PtrAlign:        8,
		LongSize:        8,
		Int64Align:      8,
		LongDoubleSize:  8,
		LongDoubleAlign: 8,
		WCharSize:       4,
	}
}

func X86_64WindowsMSVC() Target {
	return Target{
		Triple:          "x86_64-windows-msvc",
		PtrSize:         8,
		PtrAlign:        8,
		LongSize:        4,
		Int64Align:      8,
		LongDoubleSize:  8,
		LongDoubleAlign: 8,
		WCharSize:       2,
		MSVC:            true,
	}
}

var knownTargets = []func() Target{
	X86_64LinuxGNU,
	I686LinuxGNU,
	AArch64LinuxGNU,
	Arm64AppleDarwin,
	X86_64WindowsMSVC,
}

// Targets lists the triples LookupTarget understands.
func Targets() []string {
	out := make([]string, 0, len(knownTargets))
	for _, mk := range knownTargets {
		out = append(out, mk().Triple)
	}
	return out
}

// LookupTarget resolves a triple. Vendor fields and OS version suffixes are
// tolerated: "x86_64-pc-linux-gnu" and "arm64-apple-darwin23.1.0" resolve.
func LookupTarget(triple string) (Target, bool) {
	if triple == "" {
		return X86_64LinuxGNU(), true
	}
	for _, mk := range knownTargets {
		t := mk()
		if t.Triple == triple {
			return t, true
		}
	}
	arch, rest, _ := strings.Cut(triple, "-")
	switch {
	case (arch == "x86_64" || arch == "amd64") && strings.Contains(rest, "linux"):
		return X86_64LinuxGNU(), true
	case (arch == "i386" || arch == "i686") && strings.Contains(rest, "linux"):
		return I686LinuxGNU(), true
	case arch == "aarch64" && strings.Contains(rest, "linux"):
		return AArch64LinuxGNU(), true
	case (arch == "arm64" || arch == "aarch64") && strings.Contains(rest, "darwin"):
		return Arm64AppleDarwin(), true
	case arch == "x86_64" && (strings.Contains(rest, "windows") || strings.Contains(rest, "win32")):
		return X86_64WindowsMSVC(), true
	}
	return Target{}, false
}
