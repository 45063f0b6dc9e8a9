package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/assys/brickguide/internal/cli"
	bgerrors "github.com/assys/brickguide/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	os.Exit(exitCode(err))
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug detail")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
	}
	return root.ExecuteContext(ctx)
}

// exitCode prints err and maps it to a process status: 130 after an
// interrupt, 2 for bad input, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	}
	fmt.Fprintln(os.Stderr, "brickguide:", err)
	switch bgerrors.GetCode(err) {
	case bgerrors.ErrCodeInvalidInput, bgerrors.ErrCodeInvalidFormat, bgerrors.ErrCodeInvalidDirection:
		return 2
	}
	return 1
}
