package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/stemma/internal/cli"
	errs "github.com/matzehuels/stemma/pkg/errors"
)

// Set via -ldflags "-X main.version=...".
var version, commit, date string

func main() {
	cli.SetVersion(version, commit, date)
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx)
	code := cli.ExitCode(err)
	if err != nil && code != cli.ExitInterrupted {
		fmt.Fprintln(os.Stderr, "Error:", errs.UserMessage(err))
	}
	return code
}
