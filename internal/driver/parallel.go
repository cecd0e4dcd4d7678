package driver

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"ffigen/internal/trace"
)

// GenerateAll runs Generate for every path, at most opts.Jobs at a time
// (GOMAXPROCS when zero). Each snapshot gets its own registry and mangler;
// results keep the order of paths. A failing snapshot does not stop the
// others; the returned error is only set when ctx was cancelled, and
// then the entries of snapshots that never started are nil.
func GenerateAll(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "generate_all")
	span.Set("snapshots", strconv.Itoa(len(paths)))
	defer span.End("")

	results := make([]*Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	for _, p := range paths {
		notify(opts.Progress, Event{File: p, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	batch := opts.Batch || len(paths) > 1

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// Indices are unique per goroutine; no lock needed.
			results[i] = Generate(gctx, path, opts, batch)
			return nil
		})
	}
	err := g.Wait()
	notify(opts.Progress, Event{Stage: StageEmit, Status: StatusDone, Elapsed: time.Since(start)})
	return results, err
}
