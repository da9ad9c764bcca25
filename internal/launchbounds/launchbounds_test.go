package launchbounds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
)

func TestNone(t *testing.T) {
	assert.Empty(t, None.LaunchBounds("rayleigh_interact"))
}

func TestParse(t *testing.T) {
	table, err := Parse([]byte(`
kernels:
  - name: rayleigh_interact
    max_threads: 256
    min_blocks: 8
  - name: pre_step
    max_threads: 128
`))
	require.NoError(t, err)

	assert.Equal(t, "__launch_bounds__(256, 8)", table.LaunchBounds("rayleigh_interact"))
	assert.Equal(t, "__launch_bounds__(128)", table.LaunchBounds("pre_step"))
	assert.Empty(t, table.LaunchBounds("compton_scatter_interact"))
	assert.Equal(t, []string{"pre_step", "rayleigh_interact"}, table.Kernels())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"zero threads":   "kernels:\n  - name: a\n    max_threads: 0\n",
		"missing name":   "kernels:\n  - max_threads: 32\n",
		"negative block": "kernels:\n  - name: a\n    max_threads: 32\n    min_blocks: -1\n",
		"duplicate":      "kernels:\n  - name: a\n    max_threads: 32\n  - name: a\n    max_threads: 64\n",
		"bad yaml":       "kernels: [",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeInvalidArgument), "got %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bounds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kernels:\n  - name: k\n    max_threads: 64\n"), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "__launch_bounds__(64)", table.LaunchBounds("k"))

	_, err = Load(filepath.Join(dir, "absent.yaml"))
	assert.True(t, errors.IsCode(err, errors.CodeIO), "got %v", err)
}

func TestNilTable(t *testing.T) {
	var table *Table
	assert.Empty(t, table.LaunchBounds("k"))
	assert.Nil(t, table.Kernels())
}
