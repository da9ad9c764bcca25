package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/kernelgen/internal/version"
)

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show kernelgen version information",
		Long: `Display version information for kernelgen.

This command shows:
  • Version, git commit hash, and build timestamp
  • Go runtime version`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersionInfo())
		},
	}
}
