//go:build unit

package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/local"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/process"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

type fixture struct {
	root       string
	source     string
	work       string
	repository *entities.ScmRepository
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// newFixture creates a module with two files, a metadata directory and an ignored log.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:       root,
		source:     filepath.Join(root, "core"),
		work:       filepath.Join(t.TempDir(), "checkout"),
		repository: entities.NewScmRepository(entities.ProviderLocal, "|", &local.Repository{Root: root, Module: "core"}),
	}
	writeFile(t, filepath.Join(f.source, "a.txt"), "alpha\n")
	writeFile(t, filepath.Join(f.source, "src", "b.txt"), "beta\n")
	writeFile(t, filepath.Join(f.source, ".svn", "entries"), "metadata\n")
	writeFile(t, filepath.Join(f.source, "build.log"), "noise\n")
	writeFile(t, filepath.Join(f.source, local.IgnoreFile), "*.log\n")
	return f
}

func (f *fixture) request(files ...string) *entities.CommandRequest {
	return &entities.CommandRequest{Repository: f.repository, FileSet: entities.NewFileSet(f.work, files...)}
}

func (f *fixture) run(t *testing.T, command scmcore.CommandFunc, request *entities.CommandRequest) *entities.ScmResult {
	t.Helper()
	result, err := command(context.Background(), nil, request)
	require.NoError(t, err)
	return result
}

func (f *fixture) checkout(t *testing.T) {
	t.Helper()
	f.run(t, local.CheckOut(), f.request())
}

func TestCheckOutAndStatus(t *testing.T) {
	t.Parallel()

	t.Run("should copy the module without metadata and ignored files", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)

		// when
		result := f.run(t, local.CheckOut(), f.request())

		// then
		assert.Equal(t, []string{"a.txt", "src/b.txt"}, doubles.Paths(result))
		assert.Equal(t, entities.StatusCheckedOut, result.Files[0].Status)
		assert.Equal(t, "beta\n", readFile(t, filepath.Join(f.work, "src", "b.txt")))
		assert.NoDirExists(t, filepath.Join(f.work, ".svn"))
		assert.NoFileExists(t, filepath.Join(f.work, "build.log"))
		assert.FileExists(t, filepath.Join(f.work, local.ManifestName))
	})

	t.Run("should report a clean checkout as unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		f.checkout(t)

		// when
		status := f.run(t, local.Status(), f.request())
		update := f.run(t, local.Update(), f.request())

		// then
		assert.Empty(t, status.Files)
		assert.Empty(t, update.Files)
	})

	t.Run("should report modified, unknown, added and missing files", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		f.checkout(t)
		writeFile(t, filepath.Join(f.work, "a.txt"), "alpha, edited\n")
		writeFile(t, filepath.Join(f.work, "stray.txt"), "?\n")
		writeFile(t, filepath.Join(f.work, "new.txt"), "new\n")
		require.NoError(t, os.Remove(filepath.Join(f.work, "src", "b.txt")))
		f.run(t, local.Add(), f.request("new.txt"))

		// when
		result := f.run(t, local.Status(), f.request())

		// then
		assert.ElementsMatch(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusModified),
			entities.NewScmFile("new.txt", entities.StatusAdded),
			entities.NewScmFile("stray.txt", entities.StatusUnknown),
			entities.NewScmFile("src/b.txt", entities.StatusMissing),
		}, result.Files)
	})

	t.Run("should fail outside a checkout", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)

		// when
		result, err := local.Status()(context.Background(), nil, f.request())

		// then
		require.Error(t, err)
		assert.Nil(t, result)
		var scmErr *entities.ScmError
		assert.ErrorAs(t, err, &scmErr)
	})

	t.Run("should only describe the operation on a dry run", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)

		// when
		result, err := local.CheckOut()(context.Background(), process.NewRecordingRunner(), f.request())

		// then
		require.NoError(t, err)
		assert.True(t, result.DryRun)
		assert.Equal(t, "local checkout "+f.work, result.CommandLine)
		assert.NoDirExists(t, f.work)
	})
}

func TestCheckInAndUpdate(t *testing.T) {
	t.Parallel()

	t.Run("should write modified, added and removed files back", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		f.checkout(t)
		writeFile(t, filepath.Join(f.work, "a.txt"), "alpha, edited\n")
		writeFile(t, filepath.Join(f.work, "new.txt"), "new\n")
		f.run(t, local.Add(), f.request("new.txt"))
		f.run(t, local.Remove(), f.request("src/b.txt"))
		request := f.request()
		request.Parameters.Message = "edit a"

		// when
		result := f.run(t, local.CheckIn(), request)

		// then
		assert.ElementsMatch(t, []string{"a.txt", "new.txt", "src/b.txt"}, doubles.Paths(result))
		assert.Equal(t, "alpha, edited\n", readFile(t, filepath.Join(f.source, "a.txt")))
		assert.Equal(t, "new\n", readFile(t, filepath.Join(f.source, "new.txt")))
		assert.NoFileExists(t, filepath.Join(f.source, "src", "b.txt"))
		assert.Empty(t, f.run(t, local.Status(), f.request()).Files)
	})

	t.Run("should bring source changes and deletions into the checkout", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		f.checkout(t)
		writeFile(t, filepath.Join(f.source, "src", "b.txt"), "beta, upstream\n")
		writeFile(t, filepath.Join(f.source, "c.txt"), "gamma\n")
		require.NoError(t, os.Remove(filepath.Join(f.source, "a.txt")))

		// when
		result := f.run(t, local.Update(), f.request())

		// then
		assert.ElementsMatch(t, []entities.ScmFile{
			entities.NewScmFile("src/b.txt", entities.StatusUpdated),
			entities.NewScmFile("c.txt", entities.StatusAdded),
			entities.NewScmFile("a.txt", entities.StatusDeleted),
		}, result.Files)
		assert.Equal(t, "beta, upstream\n", readFile(t, filepath.Join(f.work, "src", "b.txt")))
		assert.NoFileExists(t, filepath.Join(f.work, "a.txt"))
	})

	t.Run("should keep local edits as conflicts", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		f.checkout(t)
		writeFile(t, filepath.Join(f.source, "a.txt"), "alpha, upstream\n")
		writeFile(t, filepath.Join(f.work, "a.txt"), "alpha, mine\n")

		// when
		result := f.run(t, local.Update(), f.request())

		// then
		assert.Equal(t, []entities.ScmFile{entities.NewScmFile("a.txt", entities.StatusConflict)}, result.Files)
		assert.Equal(t, "alpha, mine\n", readFile(t, filepath.Join(f.work, "a.txt")))
	})
}

func TestTagListAndExport(t *testing.T) {
	t.Parallel()

	t.Run("should snapshot the module once per tag name", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		request := f.request()
		request.Parameters.Name = "v1"

		// when
		result := f.run(t, local.Tag(), request)
		_, again := local.Tag()(context.Background(), nil, request)

		// then
		assert.Equal(t, []string{"a.txt", "src/b.txt"}, doubles.Paths(result))
		assert.Equal(t, map[string]string{"v1": ""}, result.Tags)
		assert.FileExists(t, filepath.Join(f.root, "tags", "v1", "core", "a.txt"))
		require.Error(t, again)
	})

	t.Run("should list a tagged version", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		tag := f.request()
		tag.Parameters.Name = "v1"
		f.run(t, local.Tag(), tag)
		writeFile(t, filepath.Join(f.source, "later.txt"), "after the tag\n")
		request := f.request()
		request.Parameters.Version = entities.NewTagVersion("v1")

		// when
		result := f.run(t, local.List(), request)

		// then
		assert.Equal(t, []string{"a.txt", "src/b.txt"}, doubles.Paths(result))
	})

	t.Run("should export without a manifest", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		request := f.request()
		request.Parameters.OutputDirectory = filepath.Join(t.TempDir(), "export")

		// when
		result := f.run(t, local.Export(), request)

		// then
		assert.Len(t, result.Files, 2)
		assert.FileExists(t, filepath.Join(request.Parameters.OutputDirectory, "a.txt"))
		assert.NoFileExists(t, filepath.Join(request.Parameters.OutputDirectory, local.ManifestName))
	})

	t.Run("should create directories in the module and the checkout", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		request := f.request("docs/api")
		request.Parameters.CreateInLocal = true

		// when
		result := f.run(t, local.Mkdir(), request)

		// then
		assert.Equal(t, []string{"docs/api"}, doubles.Paths(result))
		assert.DirExists(t, filepath.Join(f.source, "docs", "api"))
		assert.DirExists(t, filepath.Join(f.work, "docs", "api"))
	})
}

func TestChangeLog(t *testing.T) {
	t.Parallel()

	t.Run("should group files by modification time", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		recent := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
		older := time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(filepath.Join(f.source, "a.txt"), recent, recent))
		require.NoError(t, os.Chtimes(filepath.Join(f.source, "src", "b.txt"), recent.Add(20*time.Second), recent.Add(20*time.Second)))
		writeFile(t, filepath.Join(f.source, "c.txt"), "gamma\n")
		require.NoError(t, os.Chtimes(filepath.Join(f.source, "c.txt"), older, older))

		// when
		result := f.run(t, local.ChangeLog(), f.request())

		// then
		sets := result.ChangeLog.ChangeSets
		require.Len(t, sets, 2)
		assert.Equal(t, []string{"src/b.txt", "a.txt"}, []string{sets[0].Files[0].Name, sets[0].Files[1].Name})
		assert.True(t, sets[1].Date.Equal(older))
	})
}
