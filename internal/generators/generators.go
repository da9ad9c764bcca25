package generators

import (
	"context"
	"path"

	"golang.org/x/sync/errgroup"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/launchbounds"
	"go.eggybyte.com/egg/kernelgen/internal/logx"
	"go.eggybyte.com/egg/kernelgen/internal/projectfs"
	"go.eggybyte.com/egg/kernelgen/internal/templates"
)

const (
	// DefaultCopyright is the year range stamped into generated banners.
	DefaultCopyright = "2021-2022"
	// DefaultScript is the generator name stamped into generated banners.
	DefaultScript = "kernelgen"
)

// Generator renders requests with a template loader and writes them through a ProjectFS.
//
// Parameters:
//   - fs: Output file system
//   - loader: Template loader (embedded templates by default)
//   - bounds: Launch-bounds helper (none by default)
//   - logger: Structured logger (discarding by default)
//
// Concurrency:
//   - Safe for concurrent use
type Generator struct {
	fs        *projectfs.ProjectFS
	loader    *templates.Loader
	bounds    launchbounds.Helper
	logger    logx.Logger
	copyright string
	script    string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLoader replaces the embedded templates.
func WithLoader(loader *templates.Loader) Option {
	return func(g *Generator) {
		g.loader = loader
	}
}

// WithLaunchBounds sets the launch-bounds helper used for device kernels.
func WithLaunchBounds(helper launchbounds.Helper) Option {
	return func(g *Generator) {
		g.bounds = helper
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger logx.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithCopyright sets the copyright years in the banner.
func WithCopyright(years string) Option {
	return func(g *Generator) {
		g.copyright = years
	}
}

// WithScript sets the generator name in the banner.
func WithScript(name string) Option {
	return func(g *Generator) {
		g.script = name
	}
}

// NewGenerator creates a generator writing below fs.
func NewGenerator(fs *projectfs.ProjectFS, opts ...Option) *Generator {
	g := &Generator{
		fs:        fs,
		loader:    templates.NewLoader(),
		bounds:    launchbounds.None,
		logger:    logx.Nop(),
		copyright: DefaultCopyright,
		script:    DefaultScript,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.bounds == nil {
		g.bounds = launchbounds.None
	}
	if g.logger == nil {
		g.logger = logx.Nop()
	}
	return g
}

// FS returns the output file system.
func (g *Generator) FS() *projectfs.ProjectFS {
	return g.fs
}

// Params returns the slot values for one kind. Empty Class, Func or basename are left
// out so that templates referencing them fail instead of rendering blanks.
func (g *Generator) Params(req Request, kind Kind) map[string]string {
	req = req.WithDefaults()

	params := map[string]string{
		"Threads":   req.Threads,
		"Copyright": g.copyright,
		"Script":    g.script,
		"Lang":      kind.Lang(),
	}
	if req.Class != "" {
		params["Class"] = req.Class
	}
	if req.Func != "" {
		params["Func"] = req.Func
	}
	if name := req.Filename(kind); name != "" {
		params["Filename"] = name
	}
	if kind == KindDevice && req.Func != "" {
		params["LaunchBounds"] = g.bounds.LaunchBounds(req.Flavor.EntryPoint(req.Func))
	}
	return params
}

// Render produces the text and output path of one kind.
//
// Parameters:
//   - req: Generation request (defaults applied internally)
//   - kind: Output kind to render
//
// Returns:
//   - Output: Rendered file
//   - error: NOT_FOUND for an unknown flavor, MISSING_PARAMETER for an absent slot
//
// Concurrency:
//   - Safe for concurrent use
func (g *Generator) Render(req Request, kind Kind) (Output, error) {
	req = req.WithDefaults()

	flavor, err := ParseFlavor(string(req.Flavor))
	if err != nil {
		return Output{}, err
	}
	if kind.Ext() == "" {
		return Output{}, errors.Newf(errors.CodeInvalidArgument, "unknown output kind %q", kind)
	}

	tmpl, err := g.loader.Load(path.Join(string(flavor), kind.Ext()))
	if err != nil {
		return Output{}, err
	}

	text, err := tmpl.Render(g.Params(req, kind))
	if err != nil {
		return Output{}, err
	}

	g.logger.Debug("rendered",
		logx.Str("flavor", string(flavor)),
		logx.Str("kind", string(kind)),
		logx.Int("bytes", len(text)))

	return Output{
		Kind:    kind,
		Path:    req.Filename(kind),
		Content: []byte(text),
	}, nil
}

// RenderAll renders every requested kind. On any failure no outputs are returned.
func (g *Generator) RenderAll(req Request) ([]Output, error) {
	req = req.WithDefaults()

	outputs := make([]Output, 0, len(req.Kinds))
	for _, kind := range req.Kinds {
		out, err := g.Render(req, kind)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// Generate renders every requested kind and writes the results, overwriting existing
// files. Nothing is written unless all kinds render.
//
// Parameters:
//   - ctx: Context for cancellation of pending writes
//   - req: Generation request
//
// Returns:
//   - []Output: Written files in generation order
//   - error: Rendering error, or the first IO error among the writes
//
// Concurrency:
//   - Writes of distinct files run in parallel
func (g *Generator) Generate(ctx context.Context, req Request) ([]Output, error) {
	outputs, err := g.RenderAll(req)
	if err != nil {
		return nil, err
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, out := range outputs {
		out := out
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(errors.CodeIO, "write "+out.Path, err)
			}
			if err := g.fs.WriteFile(out.Path, out.Content, 0o644); err != nil {
				return err
			}
			g.logger.Info("wrote",
				logx.Str("path", g.fs.GetAbsolutePath(out.Path)),
				logx.Str("kind", string(out.Kind)),
				logx.Int("bytes", len(out.Content)))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		g.logger.Error(err, "generation failed", logx.Str("class", req.Class))
		return nil, err
	}
	return outputs, nil
}

// Check renders the request and compares it with the files on disk.
//
// Returns:
//   - []string: Paths that are missing or differ, in generation order
//   - error: Rendering or IO error
func (g *Generator) Check(req Request) ([]string, error) {
	outputs, err := g.RenderAll(req)
	if err != nil {
		return nil, err
	}

	var stale []string
	for _, out := range outputs {
		same, err := g.fs.SameContent(out.Path, out.Content)
		if err != nil {
			return nil, err
		}
		if !same {
			stale = append(stale, out.Path)
			continue
		}
		g.logger.Debug("unchanged", logx.Str("path", out.Path))
	}
	return stale, nil
}
