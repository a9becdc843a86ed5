//go:build unit

package gogit_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	scmgit "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/git"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/gogit"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/process"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type workspace struct {
	dir      string
	repo     *git.Repository
	commands *gogit.Commands
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	settings := entities.NewDefaultSettings()
	settings.Author = entities.Author{Name: "Grace", Email: "grace@example.com"}
	w := &workspace{
		dir:      dir,
		repo:     repo,
		commands: gogit.NewCommands(settings, scmcore.NewTool(settings, entities.ProviderGoGit, "")),
	}
	w.write(t, "a.txt", "one\n")
	w.commit(t, "initial", epoch, "a.txt")
	return w
}

func (w *workspace) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(w.dir, name), []byte(content), 0o644))
}

func (w *workspace) commit(t *testing.T, message string, when time.Time, files ...string) {
	t.Helper()
	worktree, err := w.repo.Worktree()
	require.NoError(t, err)
	for _, file := range files {
		_, err = worktree.Add(file)
		require.NoError(t, err)
	}
	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Ada", Email: "ada@example.com", When: when},
	})
	require.NoError(t, err)
}

func (w *workspace) request(t *testing.T, files ...string) *entities.CommandRequest {
	t.Helper()
	descriptor, err := scmgit.Parse("file://" + filepath.ToSlash(w.dir))
	require.NoError(t, err)
	return &entities.CommandRequest{
		Repository: entities.NewScmRepository(entities.ProviderGoGit, ":", descriptor),
		FileSet:    entities.NewFileSet(w.dir, files...),
	}
}

func run(t *testing.T, command scmcore.CommandFunc, request *entities.CommandRequest) *entities.ScmResult {
	t.Helper()
	result, err := command(context.Background(), nil, request)
	require.NoError(t, err)
	return result
}

func TestStatus(t *testing.T) {
	t.Parallel()

	t.Run("should report modified and untracked files in path order", func(t *testing.T) {
		t.Parallel()

		// given
		w := newWorkspace(t)
		w.write(t, "a.txt", "two\n")
		w.write(t, "new.txt", "fresh\n")

		// when
		result := run(t, w.commands.Status(), w.request(t))

		// then
		assert.Equal(t, []string{"a.txt", "new.txt"}, doubles.Paths(result))
		assert.Equal(t, entities.StatusModified, result.Files[0].Status)
		assert.Equal(t, entities.StatusUnknown, result.Files[1].Status)
	})

	t.Run("should restrict the report to the requested files", func(t *testing.T) {
		t.Parallel()

		// given
		w := newWorkspace(t)
		w.write(t, "a.txt", "two\n")
		w.write(t, "new.txt", "fresh\n")

		// when
		result := run(t, w.commands.Status(), w.request(t, "new.txt"))

		// then
		assert.Equal(t, []string{"new.txt"}, doubles.Paths(result))
	})
}

func TestCheckIn(t *testing.T) {
	t.Parallel()

	t.Run("should commit every tracked change with the configured author", func(t *testing.T) {
		t.Parallel()

		// given
		w := newWorkspace(t)
		w.write(t, "a.txt", "two\n")
		request := w.request(t)
		request.Parameters.Message = "second"

		// when
		result := run(t, w.commands.CheckIn(), request)

		// then
		require.Len(t, result.Files, 1)
		assert.Equal(t, entities.StatusCheckedIn, result.Files[0].Status)
		head, err := w.repo.Head()
		require.NoError(t, err)
		assert.Equal(t, head.Hash().String(), result.Revision)
		commit, err := w.repo.CommitObject(head.Hash())
		require.NoError(t, err)
		assert.Equal(t, "Grace", commit.Author.Name)
		assert.Equal(t, "second", commit.Message)
	})

	t.Run("should require a message", func(t *testing.T) {
		t.Parallel()

		// given
		w := newWorkspace(t)

		// when
		_, err := w.commands.CheckIn()(context.Background(), nil, w.request(t))

		// then
		var scmErr *entities.ScmError
		require.ErrorAs(t, err, &scmErr)
	})

	t.Run("should not touch the repository on a dry run", func(t *testing.T) {
		t.Parallel()

		// given
		w := newWorkspace(t)
		w.write(t, "a.txt", "two\n")
		before, err := w.repo.Head()
		require.NoError(t, err)
		request := w.request(t)
		request.Parameters.Message = "second"

		// when
		result, err := w.commands.CheckIn()(context.Background(), process.NewRecordingRunner(), request)

		// then
		require.NoError(t, err)
		assert.True(t, result.DryRun)
		after, err := w.repo.Head()
		require.NoError(t, err)
		assert.Equal(t, before.Hash(), after.Hash())
	})
}

func TestTagAndBranch(t *testing.T) {
	t.Parallel()

	t.Run("should tag HEAD and report the tagged files", func(t *testing.T) {
		t.Parallel()

		// given
		w := newWorkspace(t)
		request := w.request(t)
		request.Parameters.Name = "v1.0.0"

		// when
		result := run(t, w.commands.Tag(), request)

		// then
		head, err := w.repo.Head()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"v1.0.0": head.Hash().String()}, result.Tags)
		assert.Equal(t, []string{"a.txt"}, doubles.Paths(result))
		assert.Equal(t, entities.StatusTagged, result.Files[0].Status)
		_, err = w.repo.Tag("v1.0.0")
		require.NoError(t, err)
	})

	t.Run("should refuse to overwrite an existing branch", func(t *testing.T) {
		t.Parallel()

		// given
		w := newWorkspace(t)
		request := w.request(t)
		request.Parameters.Name = "feature"
		run(t, w.commands.Branch(), request)

		// when
		_, err := w.commands.Branch()(context.Background(), nil, request)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestChangeLogAndDiff(t *testing.T) {
	t.Parallel()

	t.Run("should list commits newest first with their files", func(t *testing.T) {
		t.Parallel()

		// given
		w := newWorkspace(t)
		w.write(t, "a.txt", "two\n")
		w.write(t, "b.txt", "bee\n")
		w.commit(t, "second", epoch.Add(time.Hour), "a.txt", "b.txt")

		// when
		result := run(t, w.commands.ChangeLog(), w.request(t))

		// then
		require.NotNil(t, result.ChangeLog)
		sets := result.ChangeLog.ChangeSets
		require.Len(t, sets, 2)
		assert.Equal(t, "second", sets[0].Comment)
		assert.Equal(t, "Ada", sets[0].Author)
		require.Len(t, sets[0].Files, 2)
		assert.Equal(t, "a.txt", sets[0].Files[0].Name)
		assert.Equal(t, entities.StatusModified, sets[0].Files[0].Action)
		assert.Equal(t, entities.StatusAdded, sets[0].Files[1].Action)
		assert.Equal(t, "initial", sets[1].Comment)
	})

	t.Run("should diff the working copy against HEAD", func(t *testing.T) {
		t.Parallel()

		// given
		w := newWorkspace(t)
		w.write(t, "a.txt", "two\n")

		// when
		result := run(t, w.commands.Diff(), w.request(t))

		// then
		require.Contains(t, result.Differences, "a.txt")
		assert.Contains(t, result.Differences["a.txt"], "-one")
		assert.Contains(t, result.Differences["a.txt"], "+two")
		assert.Equal(t, result.Differences["a.txt"], result.Patch)
		assert.Equal(t, map[string]entities.LineStat{"a.txt": {Added: 1, Deleted: 1}}, result.DiffStats)
	})
}
