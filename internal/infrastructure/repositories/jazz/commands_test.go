//go:build unit

package jazz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/jazz"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

const (
	workspace = "alice;s3cret@https://rtc.example.com:9443/ccm:Dev"
	remote    = "-r https://rtc.example.com:9443/ccm -u alice -P s3cret"
)

func TestCommands(t *testing.T) {
	t.Parallel()

	provider := jazz.NewProvider(entities.NewDefaultSettings())

	t.Run("should check in the files and deliver the workspace", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace, "a.txt")
		request.Parameters.Message = "fix"
		runner := doubles.NewStubCommandRunner()

		// when
		result := doubles.Execute(t, provider, entities.CommandCheckIn, request, runner)

		// then
		require.Equal(t, 2, runner.CallCount())
		assert.Equal(t, "checkin --comment fix a.txt "+remote, runner.Args(0))
		assert.Equal(t, "deliver -s Dev "+remote, runner.Args(1))
		assert.NotContains(t, result.CommandLine, "s3cret")
		assert.Equal(t, []string{"a.txt"}, doubles.Paths(result))
	})

	t.Run("should fail when the tool reports a problem", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace)
		request.Parameters.Message = "fix"
		runner := doubles.NewStubCommandRunner().WithFailure(0, "Problem running 'checkin':")

		// when
		result := doubles.Execute(t, provider, entities.CommandCheckIn, request, runner)

		// then
		assert.False(t, result.Success)
		assert.Equal(t, 1, runner.CallCount())
	})

	t.Run("should snapshot the workspace", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace)
		request.Parameters = entities.CommandParameters{Name: "REL_1", Message: "release"}
		runner := doubles.NewStubCommandRunner()

		// when
		doubles.Execute(t, provider, entities.CommandTag, request, runner)

		// then
		assert.Equal(t, "create snapshot --name REL_1 --description release Dev "+remote, runner.Args(0))
	})

	t.Run("should diff the files against the sandbox", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace, "a.txt")
		runner := doubles.NewStubCommandRunner().WithFailure(1, "")

		// when
		result := doubles.Execute(t, provider, entities.CommandDiff, request, runner)

		// then
		assert.True(t, result.Success)
		assert.Equal(t, "diff file a.txt", runner.Args(0))
	})

	t.Run("should list the change sets of the workspace", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace)
		request.Parameters.Limit = 25
		runner := doubles.NewStubCommandRunner()

		// when
		doubles.Execute(t, provider, entities.CommandChangeLog, request, runner)

		// then
		assert.Equal(t, "list changesets -w Dev "+remote+" -m 25", runner.Args(0))
	})

	t.Run("should accept the incoming changes into the workspace", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, workspace)
		runner := doubles.NewStubCommandRunner()

		// when
		doubles.Execute(t, provider, entities.CommandUpdate, request, runner)

		// then
		assert.Equal(t, "accept -v --target Dev "+remote, runner.Args(0))
	})
}
