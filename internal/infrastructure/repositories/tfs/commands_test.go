//go:build unit

package tfs_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/tfs"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

const (
	workspace = "alice;s3cret@https://tfs.example.com:8080/tfs:false:ws1:$/Product/Main"
	login     = "-noprompt -login:alice,s3cret"
)

func TestCommands(t *testing.T) {
	t.Parallel()

	provider := tfs.NewProvider(entities.NewDefaultSettings())

	t.Run("should check in the pending changes and report the changeset", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace, "a.txt")
		request.Parameters.Message = "fix"
		output := strings.Join([]string{
			request.BaseDir() + ":",
			"Checking in edit: a.txt",
			"",
			"Changeset #812 checked in.",
		}, "\n")
		runner := doubles.NewStubCommandRunner().WithOutput(output)

		// when
		result := doubles.Execute(t, provider, entities.CommandCheckIn, request, runner)

		// then
		assert.Equal(t,
			"checkin -comment:fix "+login+" -override:Checkin policies disabled for this repository a.txt",
			runner.Args(0),
		)
		assert.Equal(t, "812", result.Revision)
		require.Len(t, result.Files, 1)
		assert.Equal(t, entities.NewScmFile("a.txt", entities.StatusCheckedIn).WithRevision("812"), result.Files[0])
		assert.NotContains(t, result.CommandLine, "s3cret")
	})

	t.Run("should label the server path recursively", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace)
		request.Parameters = entities.CommandParameters{Name: "REL_1", Message: "release"}
		runner := doubles.NewStubCommandRunner()

		// when
		result := doubles.Execute(t, provider, entities.CommandTag, request, runner)

		// then
		assert.Equal(t, []string{
			"label", "REL_1", "$/Product/Main", "-recursive", "-child:replace", "-noprompt",
			"-login:alice,s3cret", "-collection:https://tfs.example.com:8080/tfs", "-comment:release",
		}, runner.Invocations[0].Args)
		assert.Equal(t, map[string]string{"REL_1": ""}, result.Tags)
	})

	t.Run("should split the unified diff per file", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace)
		absolute := filepath.Join(request.BaseDir(), "a.txt")
		runner := doubles.NewStubCommandRunner().WithOutput(strings.Join([]string{
			"--- " + absolute,
			"+++ " + absolute,
			"@@ -1 +1 @@",
			"-old",
			"+new",
		}, "\n"))

		// when
		result := doubles.Execute(t, provider, entities.CommandDiff, request, runner)

		// then
		assert.Equal(t, "diff -format:unified -recursive "+login+" .", runner.Args(0))
		require.Contains(t, result.Differences, "a.txt")
		assert.Contains(t, result.Differences["a.txt"], "+new")
	})

	t.Run("should read the detailed history between two dates", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace)
		start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
		request.Parameters = entities.CommandParameters{StartDate: &start, EndDate: &end, Limit: 5}
		runner := doubles.NewStubCommandRunner().WithOutput(strings.Join([]string{
			strings.Repeat("-", 80),
			"Changeset: 701",
			"User: bob",
			"Date: 2024-03-04 09:00:00",
			"",
			"Comment:",
			"  fix the build",
			"",
			"Items:",
			"  edit $/Product/Main/a.txt",
		}, "\n"))

		// when
		result := doubles.Execute(t, provider, entities.CommandChangeLog, request, runner)

		// then
		assert.Equal(t, []string{
			"history", "$/Product/Main", "-format:detailed", "-recursive", "-noprompt",
			"-login:alice,s3cret", "-collection:https://tfs.example.com:8080/tfs", "-stopafter:5",
			"-version:D2024-03-01T00:00:00~D2024-03-09T00:00:00",
		}, runner.Invocations[0].Args)
		sets := result.ChangeLog.ChangeSets
		require.Len(t, sets, 1)
		assert.Equal(t, "701", sets[0].Revision)
		assert.Equal(t, "bob", sets[0].Author)
		assert.Equal(t, "fix the build", sets[0].Comment)
		require.Len(t, sets[0].Files, 1)
		assert.Equal(t, "$/Product/Main/a.txt", sets[0].Files[0].Name)
	})

	t.Run("should get the labelled version and report the fetched files", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace)
		request.Parameters.Version = entities.NewTagVersion("REL_1")
		runner := doubles.NewStubCommandRunner().WithOutput(strings.Join([]string{
			request.BaseDir() + ":",
			"Replacing a.txt",
			"Deleting b.txt",
		}, "\n"))

		// when
		result := doubles.Execute(t, provider, entities.CommandUpdate, request, runner)

		// then
		assert.Equal(t, "get -recursive -version:LREL_1 "+login+" .", runner.Args(0))
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusUpdated),
			entities.NewScmFile("b.txt", entities.StatusDeleted),
		}, result.Files)
	})
}
