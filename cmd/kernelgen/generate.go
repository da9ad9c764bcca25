package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/generators"
	"go.eggybyte.com/egg/kernelgen/internal/launchbounds"
	"go.eggybyte.com/egg/kernelgen/internal/projectfs"
	"go.eggybyte.com/egg/kernelgen/internal/templates"
	"go.eggybyte.com/egg/kernelgen/internal/ui"
)

// generateOptions holds the flags of the generate command.
type generateOptions struct {
	class        string
	fn           string
	flavor       string
	threads      string
	basename     string
	kinds        []string
	outputDir    string
	launchBounds string
	templateDir  string
	copyright    string
	check        bool
	dryRun       bool
	interactive  bool
}

// newGenerateCmd creates the generate command.
func newGenerateCmd(globals *globalOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate interface, host and device sources for one kernel",
		Long: `Generate interface, host and device sources for one kernel.

Existing files are overwritten. Nothing is written if any template fails to render.

Example:
  kernelgen generate --class Rayleigh --func rayleigh
  kernelgen generate --flavor demo-loop --class AlongAndPostStep --func along_and_post_step
  kernelgen generate --class Compton --func compton_scatter --ext hh,cu --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, globals, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.class, "class", "", "Class name, e.g. Rayleigh (required)")
	flags.StringVar(&opts.fn, "func", "", "Function name, e.g. rayleigh (required)")
	flags.StringVar(&opts.flavor, "flavor", string(generators.FlavorInteractor), "Template set (interactor or demo-loop)")
	flags.StringVar(&opts.threads, "threads", "", "Thread count expression (default: size of the state collection)")
	flags.StringVar(&opts.basename, "basename", "", "Output file basename (default: derived from --class)")
	flags.StringSliceVar(&opts.kinds, "ext", nil, "Files to generate: hh, cc, cu (default: all)")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", ".", "Directory to write into")
	flags.StringVar(&opts.launchBounds, "launch-bounds", "", "YAML launch-bounds table for device kernels")
	flags.StringVar(&opts.templateDir, "template-dir", "", "Directory of <flavor>/<ext>.tmpl templates replacing the embedded set")
	flags.StringVar(&opts.copyright, "copyright", generators.DefaultCopyright, "Copyright years in the file banner")
	flags.BoolVar(&opts.check, "check", false, "Report files that are missing or out of date instead of writing")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print rendered files instead of writing")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for missing values")

	return cmd
}

// runGenerate executes the generate command.
//
// Returns:
//   - error: INVALID_ARGUMENT for bad flags, STALE from --check, IO from writing
func runGenerate(cmd *cobra.Command, globals *globalOptions, opts *generateOptions) error {
	if opts.interactive {
		if err := promptMissing(opts); err != nil {
			return err
		}
	}

	req, err := opts.request()
	if err != nil {
		return err
	}

	genOpts := []generators.Option{
		generators.WithLogger(globals.logger),
		generators.WithCopyright(opts.copyright),
	}
	if opts.launchBounds != "" {
		table, err := launchbounds.Load(opts.launchBounds)
		if err != nil {
			return err
		}
		genOpts = append(genOpts, generators.WithLaunchBounds(table))
	}
	if opts.templateDir != "" {
		genOpts = append(genOpts, generators.WithLoader(templates.NewLoaderFS(os.DirFS(opts.templateDir), "")))
	}

	fs := projectfs.NewProjectFS(opts.outputDir)
	fs.SetVerbose(globals.verbose)
	gen := generators.NewGenerator(fs, genOpts...)

	switch {
	case opts.dryRun:
		outputs, err := gen.RenderAll(req)
		if err != nil {
			return err
		}
		for _, out := range outputs {
			ui.Info("%s", fs.GetAbsolutePath(out.Path))
			ui.Print(string(out.Content))
		}
		return nil

	case opts.check:
		return reportStale(gen, req)

	default:
		ui.Info("Generating %s sources for %s", req.Flavor, req.Class)
		outputs, err := gen.Generate(cmd.Context(), req)
		if err != nil {
			return err
		}
		for _, out := range outputs {
			ui.Success("Generated %s", fs.GetAbsolutePath(out.Path))
		}
		return nil
	}
}

// request converts the flags into a validated generation request.
func (opts *generateOptions) request() (generators.Request, error) {
	flavor, err := generators.ParseFlavor(opts.flavor)
	if err != nil {
		return generators.Request{}, errors.Wrap(errors.CodeInvalidArgument, "--flavor", err)
	}
	kinds, err := generators.ParseKinds(opts.kinds)
	if err != nil {
		return generators.Request{}, err
	}

	req := generators.Request{
		Flavor:   flavor,
		Basename: opts.basename,
		Class:    opts.class,
		Func:     opts.fn,
		Threads:  opts.threads,
		Kinds:    kinds,
	}
	if err := req.Validate(); err != nil {
		return generators.Request{}, err
	}
	return req.WithDefaults(), nil
}

// promptMissing asks for class and function names not given on the command line.
func promptMissing(opts *generateOptions) error {
	if ui.IsNonInteractive() {
		return errors.New(errors.CodeInvalidArgument, "--interactive cannot be combined with --non-interactive")
	}

	var err error
	if opts.class == "" {
		opts.class, err = ui.Input("Class name:", "CamelCase model name, e.g. Rayleigh", "")
		if err != nil {
			return errors.Wrap(errors.CodeInvalidArgument, "prompt class", err)
		}
	}
	if opts.fn == "" {
		flavor, _ := generators.ParseFlavor(opts.flavor)
		help := fmt.Sprintf("snake_case name; the entry point becomes %s", flavor.EntryPoint("<func>"))
		opts.fn, err = ui.Input("Function name:", help, "")
		if err != nil {
			return errors.Wrap(errors.CodeInvalidArgument, "prompt func", err)
		}
	}
	return nil
}

// reportStale fails with STALE when any requested file differs from its rendering.
func reportStale(gen *generators.Generator, req generators.Request) error {
	stale, err := gen.Check(req)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		ui.Success("%s sources are up to date", req.Class)
		return nil
	}

	details := make([]any, 0, len(stale))
	for _, path := range stale {
		ui.Warning("Out of date: %s", gen.FS().GetAbsolutePath(path))
		details = append(details, path)
	}
	return errors.Build(errors.CodeStale).
		WithOp("check").
		WithMsgf("%d generated file(s) out of date for %s", len(stale), req.Class).
		WithDetails(details...).
		Err()
}
