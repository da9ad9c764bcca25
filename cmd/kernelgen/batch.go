package main

import (
	"context"

	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/kernelgen/internal/configschema"
	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/generators"
	"go.eggybyte.com/egg/kernelgen/internal/launchbounds"
	"go.eggybyte.com/egg/kernelgen/internal/logx"
	"go.eggybyte.com/egg/kernelgen/internal/projectfs"
	"go.eggybyte.com/egg/kernelgen/internal/ui"
)

// newBatchCmd creates the batch command.
func newBatchCmd(globals *globalOptions) *cobra.Command {
	var (
		file  string
		check bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate every job listed in a manifest",
		Long: `Generate every job listed in a kernelgen.yaml manifest.

Jobs run in order. A failing job stops the batch; files of earlier jobs stay written.

Example:
  kernelgen batch -f kernelgen.yaml
  kernelgen batch --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := loadManifest(file)
			if err != nil {
				return err
			}
			return runManifest(cmd.Context(), manifest, check, globals)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", configschema.DefaultFileName, "Manifest file")
	cmd.Flags().BoolVar(&check, "check", false, "Report files that are missing or out of date instead of writing")
	return cmd
}

// loadManifest loads a manifest and reports its diagnostics.
//
// Returns:
//   - *configschema.Manifest: Manifest with defaults applied
//   - error: INVALID_ARGUMENT summarizing error-level diagnostics
func loadManifest(path string) (*configschema.Manifest, error) {
	manifest, diags := configschema.Load(path)
	for _, d := range diags.Items() {
		switch d.Severity {
		case configschema.SeverityError:
			ui.Error("%s", d)
		case configschema.SeverityWarning:
			ui.Warning("%s", d)
		default:
			ui.Debug("%s", d)
		}
	}
	if err := diags.Err(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// runManifest processes every job of a manifest sequentially.
//
// Parameters:
//   - ctx: Context for cancellation between jobs
//   - manifest: Loaded manifest
//   - check: Compare instead of write
//   - globals: Persistent flags and logger
//
// Returns:
//   - error: First job failure, or STALE listing every out-of-date file in check mode
func runManifest(ctx context.Context, manifest *configschema.Manifest, check bool, globals *globalOptions) error {
	bounds := launchbounds.None
	if manifest.LaunchBounds != "" {
		table, err := launchbounds.Load(manifest.LaunchBounds)
		if err != nil {
			return err
		}
		bounds = table
	}

	var stale []any
	total := len(manifest.Jobs)
	for i, job := range manifest.Jobs {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.CodeInternal, "batch", err)
		}

		req := job.WithDefaults()
		ui.Step(i+1, total, "%s %s -> %s", req.Flavor, req.Class, job.OutputDir)

		fs := projectfs.NewProjectFS(job.OutputDir)
		fs.SetVerbose(globals.verbose)
		gen := generators.NewGenerator(fs,
			generators.WithLaunchBounds(bounds),
			generators.WithCopyright(manifest.Copyright),
			generators.WithLogger(globals.logger.With(logx.Int("job", i))),
		)

		if check {
			paths, err := gen.Check(req)
			if err != nil {
				return err
			}
			for _, p := range paths {
				ui.Warning("Out of date: %s", fs.GetAbsolutePath(p))
				stale = append(stale, fs.GetAbsolutePath(p))
			}
			continue
		}

		if _, err := gen.Generate(ctx, req); err != nil {
			return err
		}
	}

	if len(stale) > 0 {
		return errors.Build(errors.CodeStale).
			WithOp("check").
			WithMsgf("%d generated file(s) out of date", len(stale)).
			WithDetails(stale...).
			Err()
	}
	if check {
		ui.Success("All %d job(s) up to date", total)
	} else {
		ui.Success("Generated %d job(s)", total)
	}
	return nil
}
