package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/buildinfo"
	errs "github.com/matzehuels/stemma/pkg/errors"
)

// Exit codes returned by [ExitCode].
const (
	ExitError       = 1
	ExitBadInput    = 2   // records, flags or config were rejected
	ExitInterrupted = 130 // SIGINT, as shells report it
)

// ExitCode maps an error returned by [Execute] to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidRecords, errs.ErrCodeInvalidFormat, errs.ErrCodeCycle:
		return ExitBadInput
	}
	return ExitError
}

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package with values injected via
// ldflags at build time.
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}

// Execute runs the stemma CLI and returns an error if any command fails.
// Errors are not printed; the caller reports them.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the command context; commands read it back with
// c.logger(ctx).
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return loadConfig(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
