// Package version provides version information for the kernelgen CLI.
//
// Overview:
//   - Responsibility: CLI version metadata (version, commit, build time)
//   - Key Types: Version variables and formatting functions
//   - Concurrency Model: Immutable after link time, safe for concurrent use
//   - Error Semantics: No errors
//   - Performance Notes: Zero-cost variables
//
// Usage:
//
//	version.GetVersionString()
package version

import (
	"fmt"
	"runtime"
)

// Version is the CLI version. Overridden with -ldflags during release builds.
var Version = "v0.1.0"

// Commit is the git commit hash. Overridden with -ldflags during release builds.
var Commit = "unknown"

// BuildTime is the build timestamp in RFC3339 format. Overridden with -ldflags during release builds.
var BuildTime = "unknown"

// GetVersionString returns the one-line version string:
// kernelgen version v0.1.0 (commit 4a9b2c1, built 2025-10-31T12:10:00Z)
func GetVersionString() string {
	return fmt.Sprintf("kernelgen version %s (commit %s, built %s)", Version, Commit, BuildTime)
}

// GetFullVersionInfo returns detailed version information including the Go runtime.
func GetFullVersionInfo() string {
	return fmt.Sprintf(`kernelgen version %s (commit %s, built %s)
go version %s (%s/%s)`,
		Version, Commit, BuildTime,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
