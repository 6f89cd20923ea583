// internal/utils/path.go

package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome resolves a leading "~" to the user's home directory. Paths
// without it, and paths when no home directory is known, are returned as is.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~\\") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// ToLocalPath converts a slash separated path to the local format.
func ToLocalPath(path string) string {
	return filepath.FromSlash(path)
}
