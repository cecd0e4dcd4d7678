package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ffigen/internal/layout"
	"ffigen/internal/outfmt"
	"ffigen/internal/snapshot"
	"ffigen/internal/version"
)

// versionPayload is the JSON form of "ffigen version". Build metadata is
// only filled when requested.
type versionPayload struct {
	Tool       string   `json:"tool"`
	Version    string   `json:"version"`
	Schema     string   `json:"snapshot_schema"`
	Accepts    string   `json:"accepts"`
	Drivers    []string `json:"drivers"`
	Targets    []string `json:"targets"`
	GitCommit  string   `json:"git_commit,omitempty"`
	GitMessage string   `json:"git_message,omitempty"`
	BuildDate  string   `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the ffigen version and what it supports",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	f := versionCmd.Flags()
	f.Bool("hash", false, "include git commit hash")
	f.Bool("message", false, "include git commit message")
	f.Bool("date", false, "include build timestamp")
	f.Bool("full", false, "show every recorded bit of build metadata")
	f.String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	format, err := f.GetString("format")
	if err != nil {
		return err
	}
	show := func(name string) bool {
		full, _ := f.GetBool("full")
		on, _ := f.GetBool(name)
		return on || full
	}

	p := versionPayload{
		Tool:    "ffigen",
		Version: strings.TrimSpace(version.Version),
		Schema:  snapshot.SchemaVersion,
		Accepts: snapshot.DefaultProducerConstraint,
		Drivers: outfmt.Names(),
		Targets: layout.Targets(),
	}
	if p.Version == "" {
		p.Version = "dev"
	}
	if show("hash") {
		p.GitCommit = orUnknown(version.GitCommit)
	}
	if show("message") {
		p.GitMessage = orUnknown(version.GitMessage)
	}
	if show("date") {
		p.BuildDate = orUnknown(version.BuildDate)
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "pretty":
		printVersion(cmd.OutOrStdout(), p)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func printVersion(out io.Writer, p versionPayload) {
	fmt.Fprintf(out, "ffigen %s\n", version.Pretty())
	fmt.Fprintf(out, "snapshot schema %s, accepts %s\n", p.Schema, p.Accepts)
	fmt.Fprintf(out, "drivers: %s\n", strings.Join(p.Drivers, ", "))
	fmt.Fprintf(out, "targets: %s\n", strings.Join(p.Targets, ", "))
	for _, line := range [][2]string{{"commit", p.GitCommit}, {"message", p.GitMessage}, {"built", p.BuildDate}} {
		if line[1] != "" {
			fmt.Fprintf(out, "%-8s %s\n", line[0]+":", line[1])
		}
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
