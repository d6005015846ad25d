// Package services defines shared utilities consumed by the detector stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and correlation identifiers for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure messages
//     consistent across detectors.
//
// Use these helpers when wiring new detector logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
