package store

import (
	"path/filepath"
	"testing"
)

func TestResolveDataDir_DefaultRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ResolveDataDir("default", "")
	if err != nil {
		t.Fatalf("resolve data dir: %v", err)
	}

	want := filepath.Join(home, ".kioku", "workspaces", "default")
	if got != want {
		t.Fatalf("path mismatch: got %q want %q", got, want)
	}
}

func TestResolveDataDir_ConfiguredRoot(t *testing.T) {
	root := t.TempDir()

	got, err := ResolveDataDir("lab", root)
	if err != nil {
		t.Fatalf("resolve data dir: %v", err)
	}
	if got != filepath.Join(root, "lab") {
		t.Fatalf("path mismatch: got %q", got)
	}
}
