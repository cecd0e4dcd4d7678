package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"ffigen/internal/driver"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] SNAPSHOT...",
	Short: "Regenerate whenever a snapshot changes",
	Long: `Run gen once, then watch the snapshots and regenerate the ones that change
until interrupted. Takes the same flags as gen.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

// watchDebounce groups the several events an editor or frontend produces
// for one save.
const watchDebounce = 150 * time.Millisecond

func init() {
	addGenFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	// Regenerating a subset must not change where outputs go.
	opts.Batch = len(args) > 1

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return err
		}
		paths = append(paths, abs)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Directories are watched so that files replaced by rename are seen.
	dirs := make(map[string]bool)
	for _, p := range paths {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	regenerate := func(changed []string) {
		results, err := driver.GenerateAll(ctx, changed, opts)
		if err != nil {
			return
		}
		if err := reportResults(cmd, results, opts); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}
	regenerate(paths)
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %d snapshot(s); press Ctrl-C to stop\n", len(paths))

	return watchLoop(ctx, w.Events, w.Errors, paths, regenerate)
}

// watchLoop collects changes to paths and calls regenerate with them once
// no event arrived for watchDebounce. It returns when ctx is done.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, paths []string, regenerate func([]string)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Clean(ev.Name)
			if !slices.Contains(paths, name) {
				continue
			}
			pending[name] = true
			timer.Reset(watchDebounce)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for _, p := range paths {
				if pending[p] {
					changed = append(changed, p)
				}
			}
			clear(pending)
			if len(changed) > 0 {
				regenerate(changed)
			}
		}
	}
}
