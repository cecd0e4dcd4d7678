// Package diag defines the diagnostic model shared by the harvesting,
// mangling and output phases.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the source.Pos of the declaration the finding is about.
//   - Notes – optional secondary positions/messages for additional context.
//
// Code ranges group the producers: DCL (declaration construction), TYP (type
// reduction), MNG (identifier mangling), FE (diagnostics forwarded from the
// compiler frontend), IO and SNP (snapshot loading and configuration).
//
// # Emitting diagnostics
//
// Phases take a diag.Reporter and either call Report directly or chain a
// ReportBuilder (ReportError/ReportWarning/ReportInfo, WithNote, Emit).
// BagReporter aggregates into a Bag, which supports sorting, deduplication
// and counting; DedupReporter filters repeats before they reach the bag.
//
// Per-declaration failures are warnings or errors in the bag, never Go
// errors: the harvest continues and the CLI decides from Bag.HasErrors
// whether the run failed.
package diag
