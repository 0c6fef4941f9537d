package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// /tmp/
	//   repo/ (cv.json)
	//     subdir/
	//       nested/
	//   empty/
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	require.NoError(t, os.MkdirAll(nestedDir, 0755))
	require.NoError(t, os.MkdirAll(emptyDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "cv.json"), []byte("{}"), 0644))

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: repoDir, wantRoot: repoDir},
		{name: "Start in Subdir", startPath: subDir, wantRoot: repoDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: repoDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if tt.wantErr {
				// The temp dir may itself live inside a git checkout.
				if err == nil {
					assert.NotEqual(t, filepath.Clean(emptyDir), filepath.Clean(got))
					return
				}
				assert.ErrorIs(t, err, ErrRootNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}
}

func TestResolveDocumentDir(t *testing.T) {
	t.Run("No Force Keeps Path", func(t *testing.T) {
		assert.Equal(t, "cv", ResolveDocumentDir("cv", false))
		assert.Equal(t, ".", ResolveDocumentDir("", false))
	})

	t.Run("Temp Paths Are Trusted", func(t *testing.T) {
		dir := t.TempDir()
		assert.Equal(t, filepath.Clean(dir), ResolveDocumentDir(dir, true))
	})

	t.Run("Other Paths Are Sandboxed", func(t *testing.T) {
		sandbox := filepath.Join(os.TempDir(), "cvpro-dev")
		assert.Equal(t, filepath.Join(sandbox, "resume"), ResolveDocumentDir("/home/someone/resume", true))
		assert.Equal(t, filepath.Join(sandbox, "default"), ResolveDocumentDir("", true))
		assert.Equal(t, filepath.Join(sandbox, "default"), ResolveDocumentDir(".", true))
	})
}

func TestSplitDocumentPath(t *testing.T) {
	dir := t.TempDir()

	gotDir, gotFile := splitDocumentPath(dir)
	assert.Equal(t, dir, gotDir)
	assert.Equal(t, "cv.json", gotFile)

	gotDir, gotFile = splitDocumentPath(filepath.Join(dir, "me.json"))
	assert.Equal(t, dir, gotDir)
	assert.Equal(t, "me.json", gotFile)

	gotDir, gotFile = splitDocumentPath("")
	assert.Equal(t, ".", gotDir)
	assert.Equal(t, "cv.json", gotFile)
}
