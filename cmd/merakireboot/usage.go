package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"merakireboot/internal/services"
)

var usageLines = []string{
	"This is a script that reboots all devices in a specified network.",
	"",
	"Usage:",
	"merakireboot -k <API key> -o <org name> -n <network id> -t <seconds>",
	"",
	`Use double quotes ("") to pass arguments containing spaces. Names are case-sensitive.`,
	"Optional: -c <config file>. Subcommands: history, status, config, test-notify.",
}

// printUserText writes one operator-facing line.
func printUserText(w io.Writer, message string) {
	fmt.Fprintf(w, "@ %s\n", message)
}

func printUsage(w io.Writer) {
	for _, line := range usageLines {
		printUserText(w, line)
	}
}

// usageError prints usage for cmd and returns an error marked ErrUsage.
func usageError(cmd *cobra.Command, format string, args ...any) error {
	out := cmd.OutOrStdout()
	if cmd.HasParent() {
		fmt.Fprintln(out, cmd.UsageString())
	} else {
		printUsage(out)
	}
	return services.Wrap(services.ErrUsage, "cli", cmd.Name(), fmt.Sprintf(format, args...), nil)
}
