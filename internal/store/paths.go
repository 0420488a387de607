package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/harunnryd/kioku/internal/pathutil"
)

// ResolveWorkspaceRootPath resolves the configured workspace root path.
// If empty, it falls back to ~/.kioku/workspaces.
func ResolveWorkspaceRootPath(workspaceRootPath string) (string, error) {
	if trimmed := strings.TrimSpace(workspaceRootPath); trimmed != "" {
		return pathutil.Expand(trimmed)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kioku", "workspaces"), nil
}

// ResolveDataDir returns the data directory for a workspace, the single
// configurable root under which the snapshot and backup files live.
func ResolveDataDir(workspaceID string, workspaceRootPath string) (string, error) {
	root, err := ResolveWorkspaceRootPath(workspaceRootPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, workspaceID), nil
}

// LockPath returns the advisory lock file path for a data directory.
func LockPath(dataDir string) string {
	return filepath.Join(dataDir, "store.lock")
}
