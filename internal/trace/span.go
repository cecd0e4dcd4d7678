package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

type spanKey struct{}

type unitKey struct{}

// spanRef is what a context carries about the innermost open span.
type spanRef struct {
	id uint64
}

// WithUnit tags every event started under ctx with a snapshot path.
func WithUnit(ctx context.Context, unit string) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

func unitOf(ctx context.Context) string {
	unit, _ := ctx.Value(unitKey{}).(string)
	return unit
}

func parentOf(ctx context.Context) uint64 {
	ref, _ := ctx.Value(spanKey{}).(spanRef)
	return ref.id
}

// Span is an open interval of work. The zero of a disabled tracer is a
// valid span whose methods do nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	unit    string
	name    string
	started time.Time
	attrs   []Attr
}

// Start opens a span below the one carried by ctx and returns a context
// carrying the new span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().Allows(scope) {
		return ctx, &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parentOf(ctx),
		scope:   scope,
		unit:    unitOf(ctx),
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Unit:     s.unit,
		Name:     name,
	})
	return context.WithValue(ctx, spanKey{}, spanRef{id: s.id}), s
}

// Set attaches an attribute reported when the span ends.
func (s *Span) Set(key, value string) *Span {
	if s.tracer != nil {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	if s.tracer == nil {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(&Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Unit:     s.unit,
		Name:     s.name,
		Detail:   detail,
		Attrs:    s.attrs,
	})
	return now.Sub(s.started)
}

// ID is zero for spans that record nothing.
func (s *Span) ID() uint64 { return s.id }

// Point records an instant event under the span carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().Allows(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parentOf(ctx),
		Unit:     unitOf(ctx),
		Name:     name,
		Detail:   detail,
	})
}
