// Package main provides the kernelgen CLI entry point.
//
// Overview:
//   - Responsibility: CLI command parsing and execution
//   - Key Types: Cobra command structure, globalOptions
//   - Concurrency Model: Single-threaded CLI execution, cancelled by SIGINT/SIGTERM
//   - Error Semantics: Error codes map to exit statuses; messages go to stderr
//   - Performance Notes: Fast startup, templates parsed on first use
//
// Usage:
//
//	kernelgen [command] [flags]
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/logx"
	"go.eggybyte.com/egg/kernelgen/internal/ui"
	"go.eggybyte.com/egg/kernelgen/internal/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose        bool
	nonInteractive bool
	jsonOutput     bool
	logFormat      string

	logger logx.Logger
}

// newRootCmd builds the command tree.
//
// Returns:
//   - *cobra.Command: Root command with every subcommand registered
//
// Concurrency:
//   - Each call returns an independent tree with fresh flag state
func newRootCmd() *cobra.Command {
	globals := &globalOptions{logger: logx.Nop()}

	rootCmd := &cobra.Command{
		Use:   "kernelgen",
		Short: "Generate interactor and demo-loop kernel sources",
		Long: `Generate boilerplate C++/CUDA sources for physics kernels.

Each generation renders three files from fixed templates:
- <Basename>.hh  interface header declaring host and device entry points
- <Basename>.cc  host loop implementation
- <Basename>.cu  device kernel and launcher

Single files are generated with 'kernelgen generate'; many at once with
'kernelgen batch -f kernelgen.yaml'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ui.SetVerbose(globals.verbose)
			ui.SetNonInteractive(globals.nonInteractive)
			ui.SetJSONOutput(globals.jsonOutput)

			format, ok := logx.ParseFormat(globals.logFormat)
			if !ok {
				return errors.Newf(errors.CodeInvalidArgument, "unknown --log-format %q (want logfmt or json)", globals.logFormat)
			}
			level := slog.LevelWarn
			if globals.verbose {
				level = slog.LevelDebug
			}
			globals.logger = logx.New(
				logx.WithFormat(format),
				logx.WithLevel(level),
				logx.WithWriter(cmd.ErrOrStderr()),
			)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "V", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&globals.nonInteractive, "non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().BoolVar(&globals.jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&globals.logFormat, "log-format", string(logx.FormatLogfmt), "Log format (logfmt or json)")

	rootCmd.Version = version.GetVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.CodeInvalidArgument, cmd.CommandPath(), err)
	})

	rootCmd.AddCommand(
		newGenerateCmd(globals),
		newBatchCmd(globals),
		newWatchCmd(globals),
		newTemplatesCmd(globals),
		newVersionCmd(),
	)
	return rootCmd
}

// run executes the CLI and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ui.SetOutput(stdout, stderr)
	defer ui.SetOutput(nil, nil)

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Error("%v", err)
		return errors.ExitCode(err)
	}
	return 0
}

// main is the entry point for the kernelgen CLI.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
