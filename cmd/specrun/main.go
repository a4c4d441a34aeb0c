package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"digital.vasic.specs/internal/cmd"
	"digital.vasic.specs/pkg/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return report.ExitSuccess
	}

	var exit *cmd.ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exit.Err)
		}
		return exit.Code
	}
	// Flag and argument errors.
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return report.ExitBroken
}
