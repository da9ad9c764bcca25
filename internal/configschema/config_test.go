package configschema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/generators"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `version: "1"
output_dir: src/physics/em/generated
copyright: "2022"
defaults:
  threads: n
jobs:
  - class: Rayleigh
    func: rayleigh
  - class: Along
    func: along_and_post_step
    flavor: demo-loop
    kinds: [hh, cu]
    threads: states.size()
    output_dir: demo
`)
	dir := filepath.Dir(path)

	manifest, diags := Load(path)
	require.NotNil(t, manifest)
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags.Items())

	assert.Equal(t, path, manifest.Path())
	assert.Equal(t, "2022", manifest.Copyright)
	assert.Equal(t, filepath.Join(dir, "src/physics/em/generated"), manifest.OutputDir)
	require.Len(t, manifest.Jobs, 2)

	first := manifest.Jobs[0]
	assert.Equal(t, generators.FlavorInteractor, first.Flavor)
	assert.Equal(t, "n", first.Threads)
	assert.Equal(t, manifest.OutputDir, first.OutputDir)
	assert.Empty(t, first.Kinds)

	second := manifest.Jobs[1]
	assert.Equal(t, generators.FlavorDemoLoop, second.Flavor)
	assert.Equal(t, "states.size()", second.Threads)
	assert.Equal(t, []generators.Kind{generators.KindInterface, generators.KindDevice}, second.Kinds)
	assert.Equal(t, filepath.Join(dir, "demo"), second.OutputDir)
}

func TestLoadDefaults(t *testing.T) {
	path := writeManifest(t, "jobs:\n  - class: Rayleigh\n    func: rayleigh\n")

	manifest, diags := Load(path)
	require.NotNil(t, manifest)
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags.Items())

	assert.Equal(t, CurrentVersion, manifest.Version)
	assert.Equal(t, generators.DefaultCopyright, manifest.Copyright)
	assert.Equal(t, filepath.Dir(path), manifest.OutputDir)
	assert.Equal(t, []string{path}, manifest.WatchedFiles())
	assert.Empty(t, manifest.Jobs[0].Threads)
}

func TestLoadMissingFile(t *testing.T) {
	manifest, diags := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Nil(t, manifest)
	require.True(t, diags.HasErrors())
	assert.True(t, errors.IsCode(diags.Err(), errors.CodeInvalidArgument))
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, "jobs:\n  - class: Rayleigh\n    function: rayleigh\n")

	manifest, diags := Load(path)
	assert.Nil(t, manifest)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diags.Items()[0].Message, "function")
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		path     string
		message  string
	}{
		{
			name:     "no jobs",
			manifest: "version: \"1\"\n",
			path:     "jobs",
			message:  "jobs must not be empty",
		},
		{
			name:     "bad version",
			manifest: "version: \"2\"\njobs:\n  - class: A\n    func: a\n",
			path:     "version",
			message:  "Unsupported version 2",
		},
		{
			name:     "missing func",
			manifest: "jobs:\n  - class: A\n  - class: B\n",
			path:     "jobs[1].func",
			message:  "func is required",
		},
		{
			name:     "bad default flavor",
			manifest: "defaults:\n  flavor: physics\njobs:\n  - class: A\n    func: a\n",
			path:     "defaults.flavor",
			message:  "flavor must be one of",
		},
		{
			name:     "duplicate outputs",
			manifest: "jobs:\n  - class: A\n    func: a\n  - class: B\n    func: b\n    basename: AInteract\n",
			path:     "jobs[1]",
			message:  "also written by jobs[0]",
		},
		{
			name:     "missing launch bounds",
			manifest: "launch_bounds: bounds.yaml\njobs:\n  - class: A\n    func: a\n",
			path:     "launch_bounds",
			message:  "Launch-bounds file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := Load(writeManifest(t, tt.manifest))
			require.True(t, diags.HasErrors())

			var found bool
			for _, item := range diags.Items() {
				if item.Path == tt.path && strings.Contains(item.Message, tt.message) {
					found = true
				}
			}
			assert.True(t, found, "expected %q at %s, got %v", tt.message, tt.path, diags.Items())

			err := diags.Err()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

func TestLaunchBoundsResolved(t *testing.T) {
	path := writeManifest(t, "launch_bounds: bounds.yaml\njobs:\n  - class: A\n    func: a\n")
	bounds := filepath.Join(filepath.Dir(path), "bounds.yaml")
	require.NoError(t, os.WriteFile(bounds, []byte("kernels: []\n"), 0o644))

	manifest, diags := Load(path)
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags.Items())
	assert.Equal(t, bounds, manifest.LaunchBounds)
	assert.Equal(t, []string{path, bounds}, manifest.WatchedFiles())
}

func TestRedundantBasenameIsInfo(t *testing.T) {
	_, diags := Load(writeManifest(t, "jobs:\n  - class: A\n    func: a\n    basename: AInteract\n"))
	require.False(t, diags.HasErrors())
	require.Len(t, diags.Items(), 1)
	assert.Equal(t, SeverityInfo, diags.Items()[0].Severity)
	assert.NoError(t, diags.Err())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Severity: SeverityError, Message: "func is required", Path: "jobs[0].func", Suggestion: "Set a non-empty value"}
	assert.Equal(t, "error jobs[0].func: func is required (Set a non-empty value)", d.String())
}
