// Package services defines shared utilities consumed by the wake cycle stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp cycle IDs, stage names, and request
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (time sync, network, auth, parse, resolution) so the cycle controller
//     can decide between retrying, skipping the render, or carrying on.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the cycle.
package services
