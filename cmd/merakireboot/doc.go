// Package main hosts the merakireboot CLI entrypoint and command graph.
//
// The root command reboots every device of one Dashboard network, printing a
// "<serial> <status>" line per device. Subcommands browse the run history and
// scaffold or validate the configuration file. Operator-facing diagnostics of
// the root command are prefixed with "@ " so scripts can skip them.
package main
