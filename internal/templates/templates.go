// Package templates provides loading, slot inspection and strict rendering of the
// embedded source templates.
//
// Overview:
//   - Responsibility: Load template files, enumerate their substitution slots, render them
//   - Key Types: Loader, Template
//   - Concurrency Model: Templates are immutable after loading; Loader caches under a mutex
//   - Error Semantics: Unknown templates are NOT_FOUND, absent slots are MISSING_PARAMETER
//   - Performance Notes: Each template is parsed once per Loader
//
// Usage:
//
//	loader := templates.NewLoader()
//	tmpl, err := loader.Load("interactor/hh")
//	text, err := tmpl.Render(map[string]string{"Class": "Rayleigh", ...})
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"
	"text/template/parse"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
)

//go:embed templates/*
var templateFS embed.FS

// Extension is the file suffix of template files.
const Extension = ".tmpl"

// Template is a parsed template together with the slot names it references.
//
// Concurrency:
//   - Immutable, safe for concurrent rendering
type Template struct {
	name  string
	tmpl  *template.Template
	slots []string
}

// Name returns the template name, e.g. "interactor/cu".
func (t *Template) Name() string {
	return t.name
}

// Slots returns the sorted names of every top-level parameter the template reads.
func (t *Template) Slots() []string {
	out := make([]string, len(t.slots))
	copy(out, t.slots)
	return out
}

// Missing returns the slots that have no entry in params.
func (t *Template) Missing(params map[string]string) []string {
	var missing []string
	for _, slot := range t.slots {
		if _, ok := params[slot]; !ok {
			missing = append(missing, slot)
		}
	}
	return missing
}

// Render substitutes params into the template.
//
// Parameters:
//   - params: Slot values; every slot must be present, empty values are allowed
//
// Returns:
//   - string: Rendered text
//   - error: MISSING_PARAMETER naming every absent slot, or INTERNAL on execution failure
//
// Concurrency:
//   - Safe for concurrent use
func (t *Template) Render(params map[string]string) (string, error) {
	if missing := t.Missing(params); len(missing) > 0 {
		return "", errors.MissingParameters(t.name, missing)
	}

	var result strings.Builder
	if err := t.tmpl.Execute(&result, params); err != nil {
		return "", errors.Wrap(errors.CodeInternal, "render "+t.name, err)
	}
	return result.String(), nil
}

// Loader provides template loading from a file system, defaulting to the embedded set.
//
// Concurrency:
//   - Safe for concurrent use
type Loader struct {
	fsys  fs.FS
	root  string
	mu    sync.Mutex
	cache map[string]*Template
}

// NewLoader creates a loader over the embedded templates.
func NewLoader() *Loader {
	return NewLoaderFS(templateFS, "templates")
}

// NewLoaderFS creates a loader over an arbitrary file system, e.g. os.DirFS(dir)
// for a user-supplied template directory laid out as <flavor>/<ext>.tmpl.
func NewLoaderFS(fsys fs.FS, root string) *Loader {
	if root == "" {
		root = "."
	}
	return &Loader{
		fsys:  fsys,
		root:  root,
		cache: make(map[string]*Template),
	}
}

// Load returns the parsed template with the given name ("<flavor>/<ext>").
//
// Returns:
//   - *Template: Parsed template
//   - error: NOT_FOUND if the file is absent, INVALID_ARGUMENT if it fails to parse
func (l *Loader) Load(name string) (*Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.cache[name]; ok {
		return t, nil
	}

	content, err := fs.ReadFile(l.fsys, path.Join(l.root, name+Extension))
	if err != nil {
		return nil, errors.Wrapf(errors.CodeNotFound, "load template", err, "template %s not found", name)
	}

	t, err := Parse(name, string(content))
	if err != nil {
		return nil, err
	}
	l.cache[name] = t
	return t, nil
}

// ListTemplates lists all template names, sorted.
func (l *Loader) ListTemplates() ([]string, error) {
	var names []string
	err := fs.WalkDir(l.fsys, l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, Extension) {
			return nil
		}
		rel := p
		if l.root != "." {
			rel = strings.TrimPrefix(p, l.root+"/")
		}
		names = append(names, strings.TrimSuffix(rel, Extension))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeIO, "list templates", err)
	}
	sort.Strings(names)
	return names, nil
}

// ValidateAll parses every template and returns the first failure.
func (l *Loader) ValidateAll() ([]*Template, error) {
	names, err := l.ListTemplates()
	if err != nil {
		return nil, err
	}

	loaded := make([]*Template, 0, len(names))
	for _, name := range names {
		t, err := l.Load(name)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, t)
	}
	return loaded, nil
}

// Parse builds a Template from text. Rendering refuses absent keys.
func Parse(name, text string) (*Template, error) {
	tmpl, err := template.New(name).
		Funcs(FuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, errors.Wrapf(errors.CodeInvalidArgument, "parse template", err, "template %s does not parse", name)
	}

	seen := make(map[string]struct{})
	if tmpl.Tree != nil {
		collectSlots(tmpl.Tree.Root, seen)
	}
	slots := make([]string, 0, len(seen))
	for slot := range seen {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	return &Template{name: name, tmpl: tmpl, slots: slots}, nil
}

// FuncMap returns the helper functions available to templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"center": Center,
	}
}

// Center pads s with fill to width columns, putting any odd column on the right.
// Text wider than width is returned unchanged.
func Center(width int, fill, s string) string {
	n := len([]rune(s))
	if n >= width || fill == "" {
		return s
	}
	left := (width - n) / 2
	right := width - n - left
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, right)
}

// collectSlots records the fields read from the top-level data.
// Bodies of with/range blocks rebind dot, so only their pipelines and else branches count.
func collectSlots(node parse.Node, seen map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			collectSlots(child, seen)
		}
	case *parse.ActionNode:
		collectPipe(n.Pipe, seen)
	case *parse.IfNode:
		collectPipe(n.Pipe, seen)
		collectSlots(n.List, seen)
		collectSlots(n.ElseList, seen)
	case *parse.WithNode:
		collectPipe(n.Pipe, seen)
		collectSlots(n.ElseList, seen)
	case *parse.RangeNode:
		collectPipe(n.Pipe, seen)
		collectSlots(n.ElseList, seen)
	case *parse.TemplateNode:
		collectPipe(n.Pipe, seen)
	}
}

func collectPipe(pipe *parse.PipeNode, seen map[string]struct{}) {
	if pipe == nil {
		return
	}
	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				seen[a.Ident[0]] = struct{}{}
			case *parse.PipeNode:
				collectPipe(a, seen)
			}
		}
	}
}

// String implements fmt.Stringer for diagnostics.
func (t *Template) String() string {
	return fmt.Sprintf("%s(%s)", t.name, strings.Join(t.slots, ","))
}
