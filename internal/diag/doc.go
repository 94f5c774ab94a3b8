// Package diag defines the diagnostic model shared by the parser, the
// analyses, and the optimization passes.
//
// Diagnostic is the central record: a Severity, a stable numeric Code, a
// message, and a primary source.Span. Producers append diagnostics to a Bag;
// rendering lives in pretty.go and is the only place that touches color or
// IO. Passes never abort on a diagnostic: a malformed input construct is
// reported at SevInfo and left untouched.
package diag
