package utils

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ResolveDataPath finds the dictionary artifact. Relative paths are tried
// from the working directory first, then next to the executable, supporting
// both development runs and installed deployments.
func ResolveDataPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if FileExists(path) {
			return path, nil
		}
		return "", fmt.Errorf("data file not found at %s", path)
	}

	if FileExists(path) {
		return GetAbsolutePath(path), nil
	}

	execDir, err := GetExecutableDir()
	if err == nil {
		candidate := filepath.Join(execDir, path)
		if FileExists(candidate) {
			log.Debugf("Resolved data path next to executable: %s", candidate)
			return candidate, nil
		}
	}

	return "", fmt.Errorf("data file %s not found in working directory or next to executable", path)
}
