// Package reboot drives a reboot run end to end: organization lookup, shard
// resolution, device listing, and the sequential per-device dispatch loop.
//
// Result lines ("<serial> <status>") are written to the configured output as
// each device is handled. Diagnostics go to the logger, and the optional run
// ledger and notifier observe the run without influencing it.
package reboot
