package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/generators"
	"go.eggybyte.com/egg/kernelgen/internal/logx"
	"go.eggybyte.com/egg/kernelgen/internal/templates"
	"go.eggybyte.com/egg/kernelgen/internal/ui"
)

// newTemplatesCmd creates the templates command.
func newTemplatesCmd(globals *globalOptions) *cobra.Command {
	var (
		flavor string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List and validate templates with their slots",
		Long: `Parse every template and list the parameters it substitutes.

Example:
  kernelgen templates
  kernelgen templates --flavor demo-loop
  kernelgen templates --template-dir ./my-templates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := templates.NewLoader()
			if dir != "" {
				loader = templates.NewLoaderFS(os.DirFS(dir), "")
			}

			prefix := ""
			if flavor != "" {
				f, err := generators.ParseFlavor(flavor)
				if err != nil {
					return errors.Wrap(errors.CodeInvalidArgument, "--flavor", err)
				}
				prefix = string(f) + "/"
			}

			loaded, err := loader.ValidateAll()
			if err != nil {
				return err
			}

			var shown int
			for _, t := range loaded {
				if !strings.HasPrefix(t.Name(), prefix) {
					continue
				}
				ui.Info("%s: %s", t.Name(), strings.Join(t.Slots(), ", "))
				shown++
			}
			globals.logger.Debug("templates validated", logx.Int("count", len(loaded)))
			ui.Success("%d template(s) valid", shown)
			return nil
		},
	}

	cmd.Flags().StringVar(&flavor, "flavor", "", "Only list templates of this flavor")
	cmd.Flags().StringVar(&dir, "template-dir", "", "Directory of <flavor>/<ext>.tmpl templates to validate instead of the embedded set")
	return cmd
}
