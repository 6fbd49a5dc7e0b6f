// Package config loads, normalizes, and validates merakireboot configuration
// data.
//
// Command-line flags carry everything a reboot run strictly needs; this package
// covers the ambient knobs around it: the Dashboard base URL and request
// timeout, the optional history ledger, the per-network run lock, logging, and
// ntfy notifications. It supplies defaults, expands user paths (including tilde
// shortcuts), and reads TOML files.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
