// Package notifications delivers reboot run outcomes via ntfy.
//
// The service publishes to the topic configured in config.toml and degrades
// to a no-op when no topic is set. Delivery failures are returned to the
// caller, which logs them without changing the run result.
package notifications
