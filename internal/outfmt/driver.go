package outfmt

import (
	"fmt"
	"io"
	"slices"

	"ffigen/internal/diag"
	"ffigen/internal/ir"
	"ffigen/internal/mangle"
)

// Driver writes one output format.
type Driver interface {
	ir.Writer
	WriteHeader()
	WriteNamespace(ns string)
	WriteBetween()
	WriteFooter()
	Close() error
}

// Options configure New. Out is required; Source is only used by the C
// library driver.
type Options struct {
	Out    io.Writer
	Source io.Writer
	// InHeader is the header the snapshot was produced from; OutHeader is
	// where the generated header is written. Both are only printed.
	InHeader  string
	OutHeader string
	Mangle    mangle.Config
	Reporter  diag.Reporter
}

var drivers = map[string]func(Options) (Driver, error){
	"json": func(o Options) (Driver, error) { return NewJSON(o.Out), nil },
	"sexp": func(o Options) (Driver, error) { return NewSexp(o.Out), nil },
	"clib": func(o Options) (Driver, error) {
		if o.Source == nil {
			return nil, fmt.Errorf("clib driver needs a source output")
		}
		return NewCLib(o), nil
	},
}

// Names lists the registered drivers, sorted.
func Names() []string {
	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// New returns the driver called name.
func New(name string, opts Options) (Driver, error) {
	mk, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output driver %q (have %v)", name, Names())
	}
	if opts.Out == nil {
		return nil, fmt.Errorf("driver %s: no output", name)
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	return mk(opts)
}

// Emit writes unit through d and closes it. toNamespace, when set, is
// announced before the first declaration.
func Emit(d Driver, unit *ir.Unit, toNamespace string) error {
	d.WriteHeader()
	if toNamespace != "" {
		d.WriteNamespace(toNamespace)
	}
	for i, decl := range unit.Decls {
		if i > 0 {
			d.WriteBetween()
		}
		ir.WriteDecl(d, decl)
	}
	d.WriteFooter()
	return d.Close()
}
