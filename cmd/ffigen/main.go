package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ffigen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ffigen",
	Short: "Reduce C, C++ and Objective-C AST snapshots to FFI descriptions",
	Long: `ffigen reads AST snapshots produced by a C-family frontend and writes
language-neutral descriptions of their declarations (JSON, S-expressions)
or a flat C wrapper library for C++ APIs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyColorFlag(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return setupProfiling(cmd)
	},
}

// traceCleanup flushes the tracer set up for the running command.
var traceCleanup = func() {}

func registerGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "only print errors")
	pf.String("diag-format", "text", "diagnostics format (text|json)")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics kept per snapshot")
	pf.String("config", "", "path to ffigen.toml (default: search upward from the working directory)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "ring", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the trace ring buffer")
	pf.Duration("trace-heartbeat", 0, "trace heartbeat interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}

// main registers subcommands and global flags and runs the root command.
// A failing command exits with status 1 after dumping the trace ring.
func main() {
	rootCmd.Version = version.Version
	rootCmd.AddCommand(genCmd, packCmd, identCmd, watchCmd, versionCmd)
	registerGlobalFlags(rootCmd)

	err := rootCmd.Execute()
	stopProfiling(rootCmd)
	if err != nil {
		dumpTraceRing(rootCmd)
	}
	traceCleanup()
	if err != nil {
		os.Exit(1)
	}
}

func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "auto":
		color.NoColor = !isTerminal(os.Stderr)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
