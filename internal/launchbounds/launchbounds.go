// Package launchbounds maps kernel names to optional CUDA/HIP launch-bounds annotations.
//
// Overview:
//   - Responsibility: Supply the `__launch_bounds__(...)` text injected into device kernels
//   - Key Types: Helper interface, Table loaded from YAML, Bounds entries
//   - Concurrency Model: Tables are immutable after loading
//   - Error Semantics: Load/Parse return INVALID_ARGUMENT or IO errors; lookups never fail
//   - Performance Notes: Map lookup per kernel
//
// Usage:
//
//	table, err := launchbounds.Load("launch-bounds.yaml")
//	annotation := table.LaunchBounds("rayleigh_interact") // "" when unbounded
package launchbounds

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
)

// Helper returns the launch-bounds annotation for a kernel, or "" when none applies.
type Helper interface {
	LaunchBounds(kernel string) string
}

// HelperFunc adapts a function to Helper.
type HelperFunc func(kernel string) string

// LaunchBounds implements Helper.
func (f HelperFunc) LaunchBounds(kernel string) string {
	return f(kernel)
}

// None never annotates.
var None Helper = HelperFunc(func(string) string { return "" })

// Bounds is one kernel's launch configuration.
type Bounds struct {
	Name       string `yaml:"name" validate:"required"`
	MaxThreads int    `yaml:"max_threads" validate:"gt=0"`
	MinBlocks  int    `yaml:"min_blocks" validate:"gte=0"`
}

// Annotation renders the bounds as a kernel attribute.
func (b Bounds) Annotation() string {
	if b.MinBlocks > 0 {
		return fmt.Sprintf("__launch_bounds__(%d, %d)", b.MaxThreads, b.MinBlocks)
	}
	return fmt.Sprintf("__launch_bounds__(%d)", b.MaxThreads)
}

// file is the on-disk layout.
type file struct {
	Kernels []Bounds `yaml:"kernels" validate:"dive"`
}

// Table is a Helper backed by explicit per-kernel entries.
type Table struct {
	entries map[string]Bounds
}

// NewTable builds a table from entries. Later duplicates are rejected.
func NewTable(entries ...Bounds) (*Table, error) {
	v := validator.New()
	t := &Table{entries: make(map[string]Bounds, len(entries))}
	for i, b := range entries {
		if err := v.Struct(b); err != nil {
			return nil, errors.Wrapf(errors.CodeInvalidArgument, "launchbounds", err, "kernels[%d] is invalid", i)
		}
		if _, dup := t.entries[b.Name]; dup {
			return nil, errors.Newf(errors.CodeInvalidArgument, "kernels[%d]: duplicate kernel %q", i, b.Name)
		}
		t.entries[b.Name] = b
	}
	return t, nil
}

// Parse decodes a YAML table:
//
//	kernels:
//	  - name: rayleigh_interact
//	    max_threads: 256
//	    min_blocks: 8
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, "parse launch bounds", err)
	}
	return NewTable(f.Kernels...)
}

// Load reads and parses a YAML table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeIO, "read launch bounds "+path, err)
	}
	return Parse(data)
}

// LaunchBounds implements Helper. A nil table never annotates.
func (t *Table) LaunchBounds(kernel string) string {
	if t == nil {
		return ""
	}
	b, ok := t.entries[kernel]
	if !ok {
		return ""
	}
	return b.Annotation()
}

// Kernels lists the configured kernel names, sorted.
func (t *Table) Kernels() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
