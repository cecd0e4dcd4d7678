package irgen

import (
	"context"
	"fmt"
	"strconv"

	"ffigen/internal/diag"
	"ffigen/internal/ir"
	"ffigen/internal/layout"
	"ffigen/internal/native"
	"ffigen/internal/source"
	"ffigen/internal/trace"
)

// Harvester builds the IR of one translation unit. It is not safe for
// concurrent use; run one Harvester per unit.
type Harvester struct {
	tu       *native.TranslationUnit
	layout   *layout.LayoutEngine
	reporter diag.Reporter
	reg      *Registry

	// specs queues class template specializations reached through types;
	// they are emitted after the top-level pass.
	specs  []*native.RecordDecl
	queued map[*native.RecordDecl]bool

	// refOnly is set while reducing the underlying type of a typedef
	// reference: nothing may be emitted in place there.
	refOnly bool

	unit *ir.Unit
}

// New creates a Harvester for tu. A nil engine uses the target named by
// the unit, or x86_64 Linux with a TargetUnknown warning when the triple is
// not known. A nil reporter drops diagnostics.
func New(tu *native.TranslationUnit, engine *layout.LayoutEngine, reporter diag.Reporter) *Harvester {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	if engine == nil {
		target, ok := layout.LookupTarget(tu.Target)
		if !ok {
			target = layout.X86_64LinuxGNU()
			diag.ReportWarning(reporter, diag.TargetUnknown, source.Pos{},
				fmt.Sprintf("unknown target %q, laying out for %s", tu.Target, target.Triple)).Emit()
		}
		engine = layout.New(target)
	}
	return &Harvester{
		tu:       tu,
		layout:   engine,
		reporter: reporter,
		reg:      NewRegistry(),
		queued:   make(map[*native.RecordDecl]bool),
		unit:     &ir.Unit{Source: tu.MainFile},
	}
}

// Registry exposes the declaration registry of this run.
func (h *Harvester) Registry() *Registry { return h.reg }

// Unit returns the declarations emitted so far.
func (h *Harvester) Unit() *ir.Unit { return h.unit }

// Run visits every top-level declaration in source order, then emits the
// queued template specializations. When the frontend recorded a fatal
// error, Run stops before the declaration it was attached to and returns
// the partial unit with ErrFrontendFatal.
func (h *Harvester) Run(ctx context.Context) (*ir.Unit, error) {
	ctx, span := trace.Start(ctx, trace.ScopePass, "harvest")
	defer span.End("")

	h.forwardFrontendDiagnostics()

	fatal := h.tu.FatalIndex()
	for i, d := range h.tu.Decls {
		if err := ctx.Err(); err != nil {
			return h.unit, err
		}
		if fatal >= 0 && i >= fatal {
			span.Set("stopped_at", strconv.Itoa(i))
			return h.unit, ErrFrontendFatal
		}
		h.HandleTopLevelDecl(ctx, d)
	}
	h.emitQueuedSpecializations(ctx)

	span.Set("decls", strconv.Itoa(len(h.unit.Decls))).Set("ids", strconv.Itoa(h.reg.Len()))
	return h.unit, nil
}

func (h *Harvester) forwardFrontendDiagnostics() {
	for _, fd := range h.tu.Diagnostics {
		switch fd.Severity {
		case native.DiagFatal:
			h.reporter.Report(diag.FrontendFatal, diag.SevError, fd.Pos, fd.Message, nil)
		case native.DiagError:
			h.reporter.Report(diag.FrontendError, diag.SevError, fd.Pos, fd.Message, nil)
		case native.DiagWarning:
			h.reporter.Report(diag.FrontendWarning, diag.SevWarning, fd.Pos, fd.Message, nil)
		}
	}
}

// HandleTopLevelDecl emits d, descending into namespaces and linkage
// blocks.
func (h *Harvester) HandleTopLevelDecl(ctx context.Context, d native.Decl) {
	switch dd := d.(type) {
	case *native.LinkageSpecDecl:
		for _, child := range dd.Decls {
			h.HandleTopLevelDecl(ctx, child)
		}
		return
	case *native.NamespaceDecl:
		if !dd.IsAnonymous() {
			h.emit(ctx, dd)
		}
		for _, child := range dd.Decls {
			h.HandleTopLevelDecl(ctx, child)
		}
		return
	case *native.TemplateDecl:
		// The template itself has no ABI; explicitly requested
		// specializations are emitted with the referenced ones.
		for _, spec := range dd.Specializations {
			if spec.Specialization != nil && spec.Specialization.Kind >= native.SpecExplicitSpecialization {
				h.queueSpecialization(spec)
			}
		}
		return
	}
	h.emit(ctx, d)
}

func (h *Harvester) emit(ctx context.Context, d native.Decl) {
	if h.reg.Emitted(d) {
		diag.ReportInfo(h.reporter, diag.DeclDuplicate, d.Pos(),
			fmt.Sprintf("%s %s already emitted", native.KindName(d), native.QualifiedName(d))).Emit()
		return
	}
	decl, err := h.MakeDecl(d, true)
	if err != nil {
		h.reportInvalid(d, err)
		return
	}
	h.reg.MarkEmitted(d)
	h.unit.Decls = append(h.unit.Decls, decl)
	trace.Point(ctx, trace.ScopeDecl, native.KindName(d), decl.Base().Name)
}

func (h *Harvester) reportInvalid(d native.Decl, err error) {
	ide, ok := err.(*InvalidDeclError)
	if !ok {
		diag.ReportError(h.reporter, diag.DeclInvalid, d.Pos(), err.Error()).Emit()
		return
	}
	switch ide.Kind {
	case InvalidInternalTemplate:
		diag.ReportInfo(h.reporter, diag.DeclInternalTemplate, d.Pos(), ide.Error()).Emit()
	case InvalidDefinition:
		diag.ReportWarning(h.reporter, diag.DeclInvalid, d.Pos(), ide.Error()).Emit()
	default:
		diag.ReportInfo(h.reporter, diag.DeclInvalid, d.Pos(), ide.Error()).Emit()
	}
}

func (h *Harvester) queueSpecialization(rd *native.RecordDecl) {
	rd = definitionOf(rd)
	if h.queued[rd] {
		return
	}
	h.queued[rd] = true
	h.specs = append(h.specs, rd)
}

// emitQueuedSpecializations drains the queue; emitting one specialization
// may queue more.
func (h *Harvester) emitQueuedSpecializations(ctx context.Context) {
	for i := 0; i < len(h.specs); i++ {
		spec := h.specs[i]
		if h.reg.Emitted(spec) {
			continue
		}
		h.emit(ctx, spec)
	}
}

// location renders pos for the IR; empty when unknown.
func (h *Harvester) location(pos source.Pos) string {
	return h.tu.Files.Render(pos)
}

// currentPos is the position diagnostics about types are attached to.
func (h *Harvester) currentPos() source.Pos {
	if d := h.reg.Current(); d != nil {
		return d.Pos()
	}
	return source.Pos{}
}

func definitionOf(rd *native.RecordDecl) *native.RecordDecl {
	if def := rd.Definition(); def != nil {
		return def
	}
	return rd
}

// scopeOf returns the nearest enclosing named scope of d, skipping linkage
// blocks; nil at file scope.
func scopeOf(d native.Decl) native.Decl {
	for p := d.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*native.LinkageSpecDecl); ok {
			continue
		}
		return p
	}
	return nil
}
