// Package projectfs provides rooted file system operations for generated sources.
//
// Overview:
//   - Responsibility: Write, read and compare generated files below an output directory
//   - Key Types: ProjectFS
//   - Concurrency Model: Safe for concurrent use on distinct paths
//   - Error Semantics: File system errors are wrapped with the IO code and the relative path
//   - Performance Notes: Whole-file reads and writes, generated files are small
//
// Usage:
//
//	fs := NewProjectFS("generated")
//	err := fs.WriteFile("RayleighInteract.hh", content, 0644)
//	same, err := fs.SameContent("RayleighInteract.hh", content)
package projectfs

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
	"go.eggybyte.com/egg/kernelgen/internal/ui"
)

// ProjectFS provides file system operations relative to a root directory.
//
// Parameters:
//   - rootDir: Root directory for operations
//   - verbose: Whether to report file operations
//
// Concurrency:
//   - Safe for concurrent use
type ProjectFS struct {
	rootDir string
	verbose bool
}

// NewProjectFS creates a new project file system rooted at rootDir.
// An empty rootDir means the current working directory.
func NewProjectFS(rootDir string) *ProjectFS {
	if rootDir == "" {
		rootDir = "."
	}
	return &ProjectFS{
		rootDir: rootDir,
	}
}

// SetVerbose enables or disables reporting of file operations.
func (fs *ProjectFS) SetVerbose(enabled bool) {
	fs.verbose = enabled
}

// GetRootDir returns the root directory.
func (fs *ProjectFS) GetRootDir() string {
	return fs.rootDir
}

// GetAbsolutePath returns the root-joined path for a relative path.
func (fs *ProjectFS) GetAbsolutePath(path string) string {
	return filepath.Join(fs.rootDir, path)
}

// WriteFile writes content to a file, replacing any existing file.
//
// Parameters:
//   - path: File path relative to root
//   - content: File content
//   - mode: File permissions
//
// Returns:
//   - error: IO error if the parent directory or file cannot be written
//
// Concurrency:
//   - Single-threaded per file
func (fs *ProjectFS) WriteFile(path string, content []byte, mode fs.FileMode) error {
	fullPath := fs.GetAbsolutePath(path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return errors.Wrap(errors.CodeIO, "create parent directory for "+path, err)
	}

	if err := os.WriteFile(fullPath, content, mode); err != nil {
		return errors.Wrap(errors.CodeIO, "write "+path, err)
	}

	if fs.verbose {
		ui.Debug("Written file: %s", path)
	}
	return nil
}

// ReadFile reads content from a file.
func (fs *ProjectFS) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(fs.GetAbsolutePath(path))
	if err != nil {
		return nil, errors.Wrap(errors.CodeIO, "read "+path, err)
	}
	return content, nil
}

// FileExists checks if a regular file exists.
func (fs *ProjectFS) FileExists(path string) (bool, error) {
	info, err := os.Stat(fs.GetAbsolutePath(path))
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(errors.CodeIO, "stat "+path, err)
}

// SameContent reports whether path exists with exactly content.
//
// Returns:
//   - bool: False if the file is absent or differs
//   - error: IO error for anything other than absence
func (fs *ProjectFS) SameContent(path string, content []byte) (bool, error) {
	exists, err := fs.FileExists(path)
	if err != nil || !exists {
		return false, err
	}
	current, err := fs.ReadFile(path)
	if err != nil {
		return false, err
	}
	return bytes.Equal(current, content), nil
}

// EnsureDirectory ensures the root directory exists and is writable as a directory.
func (fs *ProjectFS) EnsureDirectory(path string) error {
	if err := os.MkdirAll(fs.GetAbsolutePath(path), 0o755); err != nil {
		return errors.Wrap(errors.CodeIO, "ensure directory "+path, err)
	}
	if fs.verbose {
		ui.Debug("Ensured directory exists: %s", path)
	}
	return nil
}
