package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"ffigen/internal/config"
	"ffigen/internal/diag"
	"ffigen/internal/ir"
	"ffigen/internal/irgen"
	"ffigen/internal/layout"
	"ffigen/internal/mangle"
	"ffigen/internal/native"
	"ffigen/internal/observ"
	"ffigen/internal/outfmt"
	"ffigen/internal/source"
	"ffigen/internal/trace"
)

// ErrHasErrors is returned for a snapshot whose run reported errors when
// Options.FailOnError is set. Nothing is written for it.
var ErrHasErrors = errors.New("errors reported")

// Options configure a run over one or more snapshots.
type Options struct {
	Driver       string
	// Output is the output file, or the output directory when several
	// snapshots are processed. Empty writes to Result.Rendered.
	Output       string
	SourceOutput string
	// Batch forces the directory layout of Output for a single snapshot.
	Batch        bool
	ToNamespace  string

	// Target overrides the triple recorded in the snapshot.
	Target          string
	ProducerVersion string
	Mangle          mangle.Config

	FailOnError    bool
	Jobs           int
	MaxDiagnostics int
	Timings        bool

	Cache    *DiskCache
	Progress ProgressSink
}

// OptionsFromConfig maps ffigen.toml onto Options; flags are applied on top
// by the caller.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Driver:          cfg.Output.Driver,
		ToNamespace:     cfg.Output.ToNamespace,
		Target:          cfg.Target.Triple,
		ProducerVersion: cfg.Frontend.ProducerVersion,
		Mangle:          cfg.Mangle.WithDefaults(),
		FailOnError:     cfg.Run.FailOnError,
		Jobs:            cfg.Run.Jobs,
		MaxDiagnostics:  100,
	}
}

// Result is the outcome of one snapshot.
type Result struct {
	Path  string
	TU    *native.TranslationUnit
	Unit  *ir.Unit
	Files *source.FileSet
	Bag   *diag.Bag
	// Rendered holds the output when Options.Output is empty.
	Rendered []byte
	// Outputs lists the files written.
	Outputs []string
	Timing  observ.Report
	Err     error
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

func engineFor(tu *native.TranslationUnit, override string) (*layout.LayoutEngine, error) {
	triple := override
	if triple == "" {
		triple = tu.Target
	}
	target, ok := layout.LookupTarget(triple)
	if !ok {
		return nil, fmt.Errorf("unknown target %q", triple)
	}
	return layout.New(target), nil
}

// Harvest loads the snapshot at path and reduces it to IR. The result
// carries the partial unit and ErrFrontendFatal when the frontend stopped
// early.
func Harvest(ctx context.Context, path string, opts Options) *Result {
	res := &Result{Path: path, Bag: diag.NewBag(opts.maxDiagnostics())}
	timer := observ.NewTimer()
	defer func() {
		res.Timing = timer.Report()
		res.Timing.Path = path
	}()
	harvest(ctx, res, opts, timer)
	return res
}

func harvest(ctx context.Context, res *Result, opts Options, timer *observ.Timer) bool {
	ctx, span := trace.Start(trace.WithUnit(ctx, res.Path), trace.ScopeUnit, "harvest_snapshot")
	defer span.End("")

	notify(opts.Progress, Event{File: res.Path, Stage: StageLoad, Status: StatusWorking})
	endLoad := timer.Phase("load")
	tu, err := LoadUnit(res.Path, opts.ProducerVersion, opts.Cache)
	endLoad("")
	if err != nil {
		res.Bag.Add(diag.NewError(loadErrorCode(err), source.Pos{}, err.Error()))
		res.Err = err
		return false
	}
	res.TU, res.Files = tu, tu.Files

	engine, err := engineFor(tu, opts.Target)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.TargetUnknown, source.Pos{}, err.Error()))
		res.Err = err
		return false
	}

	notify(opts.Progress, Event{File: res.Path, Stage: StageHarvest, Status: StatusWorking})
	endHarvest := timer.Phase("harvest")
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	h := irgen.New(tu, engine, reporter)
	unit, err := h.Run(ctx)
	if n := reporter.Suppressed(); n > 0 {
		span.Set("duplicate_diagnostics", strconv.Itoa(n))
	}
	endHarvest(fmt.Sprintf("%d decls", len(unit.Decls)))
	res.Unit = unit
	if unit.Source == "" {
		unit.Source = tu.MainFile
	}
	if err != nil {
		res.Err = err
		return errors.Is(err, irgen.ErrFrontendFatal)
	}
	return true
}

// Generate harvests the snapshot at path and writes it with the configured
// driver. batch selects the directory layout of Options.Output.
func Generate(ctx context.Context, path string, opts Options, batch bool) *Result {
	res := &Result{Path: path, Bag: diag.NewBag(opts.maxDiagnostics())}
	timer := observ.NewTimer()
	defer func() {
		res.Timing = timer.Report()
		res.Timing.Path = path
		if opts.Timings {
			addTimings(res.Bag, res.Timing.Diagnostic())
		}
		status := StatusDone
		if res.Err != nil {
			status = StatusError
		}
		notify(opts.Progress, Event{File: path, Stage: StageEmit, Status: status, Err: res.Err})
	}()

	if !harvest(ctx, res, opts, timer) {
		return res
	}
	if opts.FailOnError && (res.Bag.HasErrors() || res.TU.HasErrors()) {
		res.Err = errors.Join(res.Err, fmt.Errorf("%s: %w", path, ErrHasErrors))
		return res
	}

	notify(opts.Progress, Event{File: path, Stage: StageEmit, Status: StatusWorking})
	endEmit := timer.Phase("emit")
	err := emit(res, opts, batch)
	endEmit(opts.Driver)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOWriteError, source.Pos{}, err.Error()))
		res.Err = errors.Join(res.Err, err)
	}
	return res
}

// addTimings keeps the timing diagnostic even when the bag is full.
func addTimings(bag *diag.Bag, d diag.Diagnostic) {
	if bag.Add(d) {
		return
	}
	extra := diag.NewBag(1)
	extra.Add(d)
	bag.Merge(extra)
}

func emit(res *Result, opts Options, batch bool) error {
	name := opts.Driver
	if name == "" {
		name = "json"
	}
	out, src := outputPaths(res.Path, opts, batch)
	if name == "clib" && out == "" {
		return fmt.Errorf("the clib driver writes two files and needs an output path")
	}

	var hdr, cpp bytes.Buffer
	outOpts := outfmt.Options{
		Out:       &hdr,
		InHeader:  res.TU.MainFile,
		OutHeader: filepath.Base(out),
		Mangle:    opts.Mangle,
		Reporter:  diag.BagReporter{Bag: res.Bag},
	}
	if name == "clib" {
		outOpts.Source = &cpp
	}
	d, err := outfmt.New(name, outOpts)
	if err != nil {
		return err
	}
	if err := outfmt.Emit(d, res.Unit, opts.ToNamespace); err != nil {
		return err
	}

	if out == "" {
		res.Rendered = hdr.Bytes()
		return nil
	}
	if err := writeFileAtomic(out, hdr.Bytes()); err != nil {
		return err
	}
	res.Outputs = append(res.Outputs, out)
	if src != "" {
		if err := writeFileAtomic(src, cpp.Bytes()); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, src)
	}
	return nil
}
