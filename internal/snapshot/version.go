package snapshot

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// Producer is the producer name this package writes.
	Producer = "ffigen"
	// SchemaVersion is the schema version Encode stamps on snapshots.
	SchemaVersion = "1.0.0"
	// DefaultProducerConstraint accepts every snapshot of the current
	// major schema version.
	DefaultProducerConstraint = "^1.0.0"
)

// CheckVersion verifies that version satisfies constraint (or
// DefaultProducerConstraint when constraint is empty).
func CheckVersion(version, constraint string) error {
	if constraint == "" {
		constraint = DefaultProducerConstraint
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return &Error{Kind: ErrVersion, Msg: fmt.Sprintf("invalid producer version constraint %q", constraint), Err: err}
	}
	if version == "" {
		return &Error{Kind: ErrVersion, Msg: "snapshot has no producer version"}
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return &Error{Kind: ErrVersion, Msg: fmt.Sprintf("invalid producer version %q", version), Err: err}
	}
	if !c.Check(v) {
		return &Error{Kind: ErrVersion, Msg: fmt.Sprintf("producer version %s does not satisfy %s", v, constraint)}
	}
	return nil
}
