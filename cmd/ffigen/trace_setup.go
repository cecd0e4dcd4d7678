package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ffigen/internal/trace"
)

// traceDumpFile receives the trace ring when a command fails.
const traceDumpFile = "ffigen.trace"

type traceFlags struct {
	output    string
	level     trace.Level
	mode      trace.Mode
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	pf := cmd.Root().PersistentFlags()
	var tf traceFlags
	var err error
	if tf.output, err = pf.GetString("trace"); err != nil {
		return tf, err
	}
	levelName, err := pf.GetString("trace-level")
	if err != nil {
		return tf, err
	}
	if tf.level, err = trace.ParseLevel(levelName); err != nil {
		return tf, err
	}
	modeName, err := pf.GetString("trace-mode")
	if err != nil {
		return tf, err
	}
	if tf.mode, err = trace.ParseMode(modeName); err != nil {
		return tf, err
	}
	if tf.ringSize, err = pf.GetInt("trace-ring-size"); err != nil {
		return tf, err
	}
	if tf.heartbeat, err = pf.GetDuration("trace-heartbeat"); err != nil {
		return tf, err
	}
	// --trace alone records phase boundaries, and an output file implies a
	// stream next to the ring.
	if tf.output != "" {
		if tf.level == trace.LevelOff {
			tf.level = trace.LevelPhase
		}
		if tf.mode == trace.ModeRing {
			tf.mode = trace.ModeBoth
		}
	}
	return tf, nil
}

// setupTracing attaches the tracer selected by the trace flags to the
// command context and returns the function that flushes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, fmt.Errorf("trace flags: %w", err)
	}
	tracer, err := trace.New(trace.Config{
		Level:      tf.level,
		Mode:       tf.mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
	})
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = trace.WithTracer(ctx, tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	if !tracer.Enabled() {
		return func() {}, nil
	}

	stopHeartbeat := trace.StartHeartbeat(tracer, tf.heartbeat)
	return func() {
		stopHeartbeat()
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}

// dumpTraceRing writes the events kept in the trace ring to traceDumpFile
// in the working directory.
func dumpTraceRing(cmd *cobra.Command) {
	ring := trace.RingOf(trace.FromContext(cmd.Context()))
	if ring == nil || len(ring.Snapshot()) == 0 {
		return
	}
	f, err := os.Create(traceDumpFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace: %v\n", err)
		return
	}
	err = ring.Dump(f, trace.FormatText)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "trace: last events written to %s\n", traceDumpFile)
}
