package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"merakireboot/internal/services"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree and returns the process exit code. Errors of
// the reboot command are reported on stdout as "@ " lines; subcommand errors
// go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	executed, err := root.ExecuteContextC(ctx)
	if err == nil {
		return services.ExitOK
	}
	switch {
	case errors.Is(err, services.ErrUsage), errors.Is(err, context.Canceled):
		// Usage text was already printed by the failing command.
	case executed == root:
		printUserText(stdout, services.UserMessage(err))
	default:
		fmt.Fprintln(stderr, "Error:", err)
	}
	return services.ExitCode(err)
}
