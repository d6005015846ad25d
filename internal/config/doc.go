// Package config loads, normalizes, and validates clearout configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLEAROUT_VISION_API_KEY. The Config type centralizes every knob the CLI
// and the HTTP API need: data and log directories, detector stage toggles
// and deadlines, fusion weights, decision thresholds, and vision provider
// credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
