// Package logging builds the slog loggers used across clearout.
//
// It provides console and JSON handlers, attr helper constructors, and the
// standardized field names (component, stage, correlation_id) that keep log
// output uniform between the analyzer, the detectors, the HTTP API, and the
// CLI. Obtain loggers through New so formats and levels stay consistent.
package logging
