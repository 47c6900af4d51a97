// Command npmkit validates package specs, paths and shell arguments, and
// drives npm install, update and view with every input checked first.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jongio/npmkit/cmdutil"
	"github.com/jongio/npmkit/config"
	"github.com/jongio/npmkit/security"
	"github.com/jongio/npmkit/version"
)

const (
	exitFailure  = 1
	exitRejected = 2
)

// NewRootCommand builds the npmkit command tree. A nil runner uses the local
// shell.
func NewRootCommand(runner cmdutil.Runner) *cobra.Command {
	return newRootCommand(&app{runner: runner})
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "npmkit",
		Short:         "Safe npm package operations",
		Long:          "npmkit validates npm package specs, file paths and shell arguments, and runs npm install, update and view with validated, escaped input.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default ./"+config.DefaultFileName+")")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.VarP(&a.output, "output", "o", "output format (default, json)")

	cmd.AddCommand(
		newValidateCommand(),
		newCheckPathCommand(),
		newEscapeCommand(),
		newInstallCommand(a),
		newUpdateCommand(a),
		newViewCommand(a),
		newToolVersionsCommand(a),
		newCacheCommand(a),
		newConfigCommand(a),
		version.NewCommand(version.New("npmkit")),
	)

	return cmd
}

// exitCode maps rejected input to exitRejected and everything else to exitFailure.
func exitCode(err error) int {
	if security.IsValidationError(err) {
		return exitRejected
	}
	return exitFailure
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCommand(nil).ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !isReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}
