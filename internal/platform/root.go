package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/cvpro/pkg/adapters/fs"
)

// ErrRootNotFound is returned by FindRoot when no workspace marker exists.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a workspace root.
// Indicators are a cv.json file or a .git directory.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, fs.DefaultFileName) || hasFile(dir, ".git") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
