package main

import (
	"fmt"
	"strings"
)

// uiMode selects the progress display of batch runs.
type uiMode uint8

const (
	uiAuto uiMode = iota
	uiOn
	uiOff
)

var uiModes = map[string]uiMode{"": uiAuto, "auto": uiAuto, "on": uiOn, "off": uiOff}

func readUIMode(value string) (uiMode, error) {
	if m, ok := uiModes[strings.ToLower(strings.TrimSpace(value))]; ok {
		return m, nil
	}
	return uiAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// draws decides whether the progress UI is drawn on a terminal stderr.
// Auto mode only draws for batches written to files, never over output
// going to stdout.
func (m uiMode) draws(snapshots int, toFiles, tty bool) bool {
	switch m {
	case uiOn:
		return true
	case uiOff:
		return false
	}
	return tty && toFiles && snapshots > 1
}
