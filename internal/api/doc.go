// Package api serves the identification pipeline over HTTP: a health probe
// and a multipart photo upload endpoint that returns the fused
// identification result. Requests select detector stages, the vision
// provider, and per-stage deadlines through query parameters. An optional
// bearer token guards the identify endpoint.
package api
