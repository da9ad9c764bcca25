// Package configschema provides manifest loading and validation for batch generation.
//
// Overview:
//   - Responsibility: Parse kernelgen.yaml, fill defaults, validate jobs
//   - Key Types: Manifest, Job, Diagnostics
//   - Concurrency Model: Immutable manifest after loading
//   - Error Semantics: Structured diagnostics with paths and suggestions
//   - Performance Notes: Single-pass parsing
//
// Usage:
//
//	manifest, diags := Load("kernelgen.yaml")
//	if diags.HasErrors() {
//	    return diags.Err()
//	}
package configschema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/generators"
)

// DefaultFileName is the manifest looked up when no path is given.
const DefaultFileName = "kernelgen.yaml"

// CurrentVersion is the only supported manifest schema version.
const CurrentVersion = "1"

// Manifest describes a set of generation jobs.
//
// Parameters:
//   - Version: Schema version for compatibility
//   - OutputDir: Directory jobs write into, relative to the manifest
//   - Copyright: Copyright years stamped into banners
//   - LaunchBounds: Optional launch-bounds table, relative to the manifest
//   - Defaults: Values applied to jobs that leave them empty
//   - Jobs: Generation requests
//
// Concurrency:
//   - Immutable after loading
type Manifest struct {
	Version      string   `yaml:"version" validate:"eq=1"`
	OutputDir    string   `yaml:"output_dir"`
	Copyright    string   `yaml:"copyright"`
	LaunchBounds string   `yaml:"launch_bounds,omitempty"`
	Defaults     Defaults `yaml:"defaults"`
	Jobs         []Job    `yaml:"jobs" validate:"min=1"`

	path string
}

// Defaults holds job values shared across the manifest.
type Defaults struct {
	Flavor  generators.Flavor `yaml:"flavor,omitempty" validate:"omitempty,oneof=interactor demo-loop"`
	Threads string            `yaml:"threads,omitempty"`
	Kinds   []generators.Kind `yaml:"kinds,omitempty"`
}

// Job is one generation request with an optional output directory override.
type Job struct {
	generators.Request `yaml:",inline"`
	OutputDir          string `yaml:"output_dir,omitempty"`
}

// Path returns the absolute path the manifest was loaded from.
func (m *Manifest) Path() string {
	return m.path
}

// WatchedFiles returns the files whose changes invalidate generated output.
func (m *Manifest) WatchedFiles() []string {
	files := []string{m.path}
	if m.LaunchBounds != "" {
		files = append(files, m.LaunchBounds)
	}
	return files
}

// Diagnostic represents a validation issue.
type Diagnostic struct {
	Severity   DiagnosticSeverity `json:"severity"`
	Message    string             `json:"message"`
	Path       string             `json:"path,omitempty"`
	Suggestion string             `json:"suggestion,omitempty"`
}

// DiagnosticSeverity represents the severity of a diagnostic.
type DiagnosticSeverity string

const (
	SeverityError   DiagnosticSeverity = "error"
	SeverityWarning DiagnosticSeverity = "warning"
	SeverityInfo    DiagnosticSeverity = "info"
)

// String formats the diagnostic for terminal output.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Severity))
	if d.Path != "" {
		b.WriteString(" " + d.Path)
	}
	b.WriteString(": " + d.Message)
	if d.Suggestion != "" {
		b.WriteString(" (" + d.Suggestion + ")")
	}
	return b.String()
}

// Diagnostics represents a collection of validation issues.
type Diagnostics struct {
	items []Diagnostic
}

// NewDiagnostics creates a new diagnostics collection.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// Add adds a diagnostic to the collection.
//
// Parameters:
//   - severity: Diagnostic severity level
//   - message: Human-readable message
//   - path: Optional manifest path, e.g. "jobs[2].func"
//   - suggestion: Optional fix suggestion
func (d *Diagnostics) Add(severity DiagnosticSeverity, message, path, suggestion string) {
	d.items = append(d.items, Diagnostic{
		Severity:   severity,
		Message:    message,
		Path:       path,
		Suggestion: suggestion,
	})
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(message, path, suggestion string) {
	d.Add(SeverityError, message, path, suggestion)
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(message, path, suggestion string) {
	d.Add(SeverityWarning, message, path, suggestion)
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(message, path, suggestion string) {
	d.Add(SeverityInfo, message, path, suggestion)
}

// HasErrors returns true if there are any error-level diagnostics.
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if there are any warning-level diagnostics.
func (d *Diagnostics) HasWarnings() bool {
	for _, item := range d.items {
		if item.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Items returns a copy of all diagnostics.
func (d *Diagnostics) Items() []Diagnostic {
	result := make([]Diagnostic, len(d.items))
	copy(result, d.items)
	return result
}

// Err folds error-level diagnostics into one INVALID_ARGUMENT error, or returns nil.
func (d *Diagnostics) Err() error {
	var msgs []string
	var paths []any
	for _, item := range d.items {
		if item.Severity != SeverityError {
			continue
		}
		msgs = append(msgs, item.String())
		paths = append(paths, item.Path)
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.Build(errors.CodeInvalidArgument).
		WithOp("load manifest").
		WithMsgf("invalid manifest: %s", strings.Join(msgs, "; ")).
		WithDetails(paths...).
		Err()
}

// Load reads and parses a manifest file.
//
// Parameters:
//   - path: Path to the manifest
//
// Returns:
//   - *Manifest: Parsed manifest with defaults applied, nil if it cannot be parsed
//   - *Diagnostics: Validation issues found
//
// Concurrency:
//   - Single-threaded file I/O
func Load(path string) (*Manifest, *Diagnostics) {
	diags := NewDiagnostics()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		diags.AddError("Manifest file not found", path, "Create "+DefaultFileName+" or pass -f")
		return nil, diags
	}

	data, err := os.ReadFile(path)
	if err != nil {
		diags.AddError(fmt.Sprintf("Failed to read manifest: %v", err), path, "Check file permissions")
		return nil, diags
	}

	manifest, err := Parse(data)
	if err != nil {
		diags.AddError(fmt.Sprintf("Failed to parse YAML: %v", err), path, "Check YAML syntax and field names")
		return nil, diags
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	manifest.path = abs

	applyDefaults(manifest, filepath.Dir(abs))
	validateManifest(manifest, diags)

	return manifest, diags
}

// Parse decodes manifest YAML, rejecting unknown fields. Defaults are not applied.
func Parse(data []byte) (*Manifest, error) {
	var manifest Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// applyDefaults fills in defaults and resolves paths against the manifest directory.
func applyDefaults(m *Manifest, dir string) {
	if m.Version == "" {
		m.Version = CurrentVersion
	}
	if m.Copyright == "" {
		m.Copyright = generators.DefaultCopyright
	}
	if m.Defaults.Flavor == "" {
		m.Defaults.Flavor = generators.FlavorInteractor
	}

	m.OutputDir = resolve(dir, m.OutputDir)
	if m.LaunchBounds != "" {
		m.LaunchBounds = resolve(dir, m.LaunchBounds)
	}

	for i := range m.Jobs {
		job := &m.Jobs[i]
		if job.Flavor == "" {
			job.Flavor = m.Defaults.Flavor
		}
		if job.Threads == "" {
			job.Threads = m.Defaults.Threads
		}
		if len(job.Kinds) == 0 {
			job.Kinds = m.Defaults.Kinds
		}
		if job.OutputDir == "" {
			job.OutputDir = m.OutputDir
		} else {
			job.OutputDir = resolve(dir, job.OutputDir)
		}
	}
}

func resolve(dir, p string) string {
	if p == "" {
		return dir
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

var manifestValidator = newManifestValidator()

func newManifestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(field.Name)
		}
		return name
	})
	return v
}

// validateManifest records every problem found in the manifest.
func validateManifest(m *Manifest, diags *Diagnostics) {
	if err := manifestValidator.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				addFieldError(diags, manifestPath(fe), fe)
			}
		}
	}

	if m.LaunchBounds != "" {
		if info, err := os.Stat(m.LaunchBounds); err != nil || info.IsDir() {
			diags.AddError("Launch-bounds file not found", "launch_bounds", "Fix the path or remove launch_bounds")
		}
	}

	written := make(map[string]int)
	for i, job := range m.Jobs {
		prefix := fmt.Sprintf("jobs[%d]", i)
		if err := manifestValidator.Struct(job.Request); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					addFieldError(diags, prefix+"."+fe.Field(), fe)
				}
			}
			continue
		}

		for _, kind := range job.WithDefaults().Kinds {
			target := filepath.Join(job.OutputDir, job.Filename(kind))
			if prev, ok := written[target]; ok {
				diags.AddError(
					fmt.Sprintf("Output %s is also written by jobs[%d]", filepath.Base(target), prev),
					prefix,
					"Set a distinct basename or output_dir",
				)
				continue
			}
			written[target] = i
		}

		if job.Basename != "" && job.Basename == job.Flavor.DefaultBasename(job.Class) {
			diags.AddInfo("basename equals the default and can be omitted", prefix+".basename", "")
		}
	}
}

// manifestPath strips the root type from a validator namespace.
func manifestPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func addFieldError(diags *Diagnostics, path string, fe validator.FieldError) {
	switch fe.Tag() {
	case "required":
		diags.AddError(fe.Field()+" is required", path, "Set a non-empty value")
	case "oneof":
		diags.AddError(fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()), path, "")
	case "eq":
		diags.AddError(fmt.Sprintf("Unsupported %s %v", fe.Field(), fe.Value()), path, "Use version: \""+CurrentVersion+"\"")
	case "min":
		diags.AddError(fe.Field()+" must not be empty", path, "Add at least one job")
	case "excludesall":
		diags.AddError(fe.Field()+" must be a plain file name", path, "Use output_dir for directories")
	default:
		diags.AddError(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()), path, "")
	}
}
