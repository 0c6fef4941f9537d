package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}

	// go test
	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolveDocumentDir determines the directory holding the document.
// When forceTemp is set, paths outside the system temp directory are re-rooted
// under a namespaced temp directory; paths already inside it are trusted.
func ResolveDocumentDir(userDir string, forceTemp bool) string {
	if !forceTemp {
		if userDir == "" {
			return "."
		}
		return userDir
	}

	cleanDir := filepath.Clean(userDir)
	rel, err := filepath.Rel(os.TempDir(), cleanDir)
	if err == nil && !strings.HasPrefix(rel, "..") && filepath.IsAbs(cleanDir) {
		return cleanDir
	}

	subName := filepath.Base(cleanDir)
	if userDir == "" || subName == "." || subName == string(os.PathSeparator) {
		subName = "default"
	}
	return filepath.Join(os.TempDir(), "cvpro-dev", subName)
}
