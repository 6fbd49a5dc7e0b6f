// Package services defines shared utilities consumed by the reboot runner,
// the Dashboard client, and the CLI.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper, so every failure carries
//     the component and operation that produced it while staying matchable
//     with errors.Is.
//   - ExitCode and UserMessage, which translate those markers into the process
//     exit status and the "@"-prefixed line shown to the operator.
//   - Context helpers that stamp run identifiers and network IDs for logging.
//
// Use these helpers when adding new failure paths so exit-code behaviour stays
// uniform across the tool.
package services
