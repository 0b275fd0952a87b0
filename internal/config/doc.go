// Package config loads, normalizes, and validates todoink configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TODOIST_API_TOKEN. The Config type centralizes every knob the wake cycle,
// daemon, and CLI need; Settings flattens the values the cycle components read
// into one immutable value that is passed explicitly instead of living in
// package globals.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical endpoint templates, and clear validation errors.
package config
