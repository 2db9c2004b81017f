// Package diag defines the diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the rule lexer, the parser, catalog construction and the
//     expansion/compile phase.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, or CLI integration.
// Rendering lives in internal/diagfmt; orchestration lives in the driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing at the offending part
//     of the rule or manifest.
//   - Notes – optional secondary spans/messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g. "first
// occurrence here") rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Phases emit through a diag.Reporter to decouple emission from storage. When
// extra context is needed, construct a ReportBuilder via ReportError /
// ReportWarning / ReportInfo, chain WithNote, then call Emit. Producers that
// repeat themselves (a broken rule cache, a manifest phoneme listing the same
// allophone twice) emit through a DedupReporter wrapper instead.
//
// Warnings are diagnostics too: a dropped duplicate allophone or a descriptor
// class that matches nothing arrives in the same Bag as hard errors, so
// library callers can inspect everything the pipeline noticed without a
// global warning stream.
//
// Keep the data model deterministic: duplicates are suppressed at emission
// time, bags are sorted before rendering, and tests compare stable string
// forms.
package diag
