package projectfs

import (
	"os"
	"path/filepath"
	"testing"

	"go.eggybyte.com/egg/kernelgen/internal/errors"
)

func TestWriteFileOverwrites(t *testing.T) {
	fs := NewProjectFS(t.TempDir())

	if err := fs.WriteFile("generated/A.hh", []byte("one"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fs.WriteFile("generated/A.hh", []byte("two"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	content, err := fs.ReadFile("generated/A.hh")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "two" {
		t.Errorf("Expected overwritten content, got %q", content)
	}
}

func TestSameContent(t *testing.T) {
	fs := NewProjectFS(t.TempDir())

	same, err := fs.SameContent("A.cu", []byte("x"))
	if err != nil || same {
		t.Fatalf("Expected absent file to differ, got same=%v err=%v", same, err)
	}

	if err := fs.WriteFile("A.cu", []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if same, _ := fs.SameContent("A.cu", []byte("x")); !same {
		t.Error("Expected identical content")
	}
	if same, _ := fs.SameContent("A.cu", []byte("y")); same {
		t.Error("Expected differing content")
	}
}

func TestFileExists(t *testing.T) {
	root := t.TempDir()
	fs := NewProjectFS(root)

	if err := os.Mkdir(filepath.Join(root, "dir"), 0o755); err != nil {
		t.Fatal(err)
	}
	if exists, err := fs.FileExists("dir"); err != nil || exists {
		t.Errorf("Expected directory not to count as file, got %v %v", exists, err)
	}
	if exists, err := fs.FileExists("nope"); err != nil || exists {
		t.Errorf("Expected absent file, got %v %v", exists, err)
	}
}

func TestWriteFileIntoFileFails(t *testing.T) {
	root := t.TempDir()
	fs := NewProjectFS(root)

	if err := fs.WriteFile("blocker", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := fs.WriteFile("blocker/A.hh", []byte("x"), 0o644)
	if !errors.IsCode(err, errors.CodeIO) {
		t.Errorf("Expected IO error, got %v", err)
	}
}

func TestDefaultRoot(t *testing.T) {
	if NewProjectFS("").GetRootDir() != "." {
		t.Error("Expected empty root to mean current directory")
	}
}
