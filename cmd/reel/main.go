// Command reel stores and retrieves generated video clips.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/reel/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}

	// ExitErrors were already reported through the output formatter. Anything
	// else comes from cobra's flag and argument parsing.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "reel: %v\n", err)
		err = cli.WrapExitError(cli.ExitCommandError, "invalid command line", err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
