package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ffigen/internal/driver"
)

var genCmd = &cobra.Command{
	Use:   "gen [flags] SNAPSHOT...",
	Short: "Generate FFI descriptions from AST snapshots",
	Long: `Reduce every snapshot (JSON or .astpack) to declarations and write them with
the selected driver. Snapshots are processed in parallel; each gets its own
declaration registry and mangler.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGen,
}

func init() {
	addGenFlags(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	results, err := runBatch(cmd, args, opts)
	if err != nil {
		return err
	}
	return reportResults(cmd, results, opts)
}

func runBatch(cmd *cobra.Command, paths []string, opts driver.Options) ([]*driver.Result, error) {
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if mode.draws(len(paths), opts.Output != "", isTerminal(os.Stderr)) {
		return runBatchWithUI(ctx, "ffigen "+cmd.Name(), paths, opts)
	}
	return driver.GenerateAll(ctx, paths, opts)
}

// reportResults prints rendered output, diagnostics and timings, and
// returns an error when any snapshot failed.
func reportResults(cmd *cobra.Command, results []*driver.Result, opts driver.Options) error {
	sink, err := newDiagSink(cmd)
	if err != nil {
		return err
	}
	quiet := sink.quiet
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	failed := 0
	for _, res := range results {
		if res == nil {
			failed++
			continue
		}
		if len(res.Rendered) > 0 {
			if _, err := out.Write(res.Rendered); err != nil {
				return err
			}
		}
		sink.add(res)
		if opts.Timings {
			printTimings(errOut, res)
		}
		if res.Err != nil {
			failed++
			fmt.Fprintf(errOut, "%s: %s %v\n", res.Path, errorColor.Sprint("failed:"), res.Err)
			continue
		}
		if !quiet {
			for _, p := range res.Outputs {
				fmt.Fprintf(errOut, "wrote %s\n", p)
			}
		}
	}
	if err := sink.flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d snapshots failed", failed, len(results))
	}
	return nil
}
