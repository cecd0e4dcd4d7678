// Package trace records what a run is doing: spans for the driver, each
// pipeline pass and each snapshot, and instant events for declarations.
//
// A tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "harvest")
//	defer span.End("")
//
// Events below the tracer's level are dropped before they are built.
// Stream tracers write every event as it happens; the ring keeps the most
// recent events so the CLI can dump them when a run fails.
package trace
