package main

import (
	"context"

	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/kernelgen/internal/configschema"
	"go.eggybyte.com/egg/kernelgen/internal/ui"
	"go.eggybyte.com/egg/kernelgen/internal/watcher"
)

// newWatchCmd creates the watch command.
func newWatchCmd(globals *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate a manifest whenever it changes",
		Long: `Run a manifest once, then regenerate whenever the manifest or its
launch-bounds table changes. Stop with Ctrl-C.

Example:
  kernelgen watch -f kernelgen.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), file, globals)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", configschema.DefaultFileName, "Manifest file")
	return cmd
}

// runWatch generates once and then on every settled change until ctx is done.
// Failures after the first run are reported and watching continues.
func runWatch(ctx context.Context, file string, globals *globalOptions) error {
	manifest, err := loadManifest(file)
	if err != nil {
		return err
	}
	if err := runManifest(ctx, manifest, false, globals); err != nil {
		return err
	}

	w, err := watcher.New(manifest.WatchedFiles(), watcher.WithLogger(globals.logger))
	if err != nil {
		return err
	}
	for _, f := range w.Files() {
		ui.Info("Watching %s", f)
	}

	// The watched set is fixed at startup; a launch_bounds path added later needs a restart.
	return w.Run(ctx, func(ctx context.Context) error {
		ui.Info("Change detected, regenerating")
		manifest, err := loadManifest(file)
		if err != nil {
			return err
		}
		return runManifest(ctx, manifest, false, globals)
	})
}
