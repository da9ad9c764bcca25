package version

import (
	"strings"
	"testing"
)

func TestVersionStrings(t *testing.T) {
	if got := GetVersionString(); !strings.HasPrefix(got, "kernelgen version "+Version) {
		t.Errorf("Unexpected version string %q", got)
	}
	full := GetFullVersionInfo()
	if !strings.Contains(full, "\ngo version go") {
		t.Errorf("Expected Go runtime line, got %q", full)
	}
}
