//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

func writeFiles(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, file := range files {
		path := filepath.Join(dir, filepath.FromSlash(file))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(file), 0o644))
	}
}

func TestFileSet(t *testing.T) {
	t.Parallel()

	t.Run("should keep the insertion order and drop duplicates", func(t *testing.T) {
		t.Parallel()

		// when
		fileSet := entities.NewFileSet("/work", "b.txt", "a.txt", "./b.txt", "")

		// then
		assert.Equal(t, []string{"b.txt", "a.txt"}, fileSet.Files())
		assert.False(t, fileSet.IsEmpty())
		assert.True(t, fileSet.Contains("a.txt"))
	})

	t.Run("should make absolute paths below the base dir relative", func(t *testing.T) {
		t.Parallel()

		// given
		base := t.TempDir()

		// when
		fileSet := entities.NewFileSet(base, filepath.Join(base, "src", "main.go"))

		// then
		assert.Equal(t, []string{"src/main.go"}, fileSet.Files())
		assert.Equal(t, []string{filepath.Join(base, "src", "main.go")}, fileSet.AbsolutePaths())
	})

	t.Run("should denote the whole tree when empty", func(t *testing.T) {
		t.Parallel()

		// when
		fileSet := entities.NewFileSet("/work")

		// then
		assert.True(t, fileSet.IsEmpty())
		assert.Equal(t, []string{"."}, fileSet.PathsOrDot())
	})

	t.Run("should expand include and exclude patterns skipping scm metadata", func(t *testing.T) {
		t.Parallel()

		// given
		base := t.TempDir()
		writeFiles(t, base, "src/a.go", "src/a_test.go", "src/b.go", "README.md", "CVS/Entries", ".git/config")

		// when
		fileSet, err := entities.NewFileSetWithPatterns(base, []string{"**/*.go", "**/Entries", "**/config"}, []string{"**/*_test.go"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"src/a.go", "src/b.go"}, fileSet.Files())
	})

	t.Run("should match everything when no include is given", func(t *testing.T) {
		t.Parallel()

		// given
		base := t.TempDir()
		writeFiles(t, base, "a.txt", "dir/b.txt")

		// when
		fileSet, err := entities.NewFileSetWithPatterns(base, nil, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "dir/b.txt"}, fileSet.Files())
	})

	t.Run("should reject an invalid pattern", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.NewFileSetWithPatterns(t.TempDir(), []string{"[a-"}, nil)

		// then
		require.Error(t, err)
	})
}
