//go:build unit

package starteam_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/starteam"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

const project = "alice:s3cret@st.example.com:49201/Proj/View"

// command renders the arguments of verb as stcmd receives them for request.
func command(request *entities.CommandRequest, verb, rest string) string {
	return verb + " -x -nologo -stop -p " + project + " -fp " + request.BaseDir() + " " + rest
}

func TestCommands(t *testing.T) {
	t.Parallel()

	provider := starteam.NewProvider(entities.NewDefaultSettings())

	t.Run("should check in the files with the reason and mask the password", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project, "a.txt")
		request.Parameters.Message = "fix"
		runner := doubles.NewStubCommandRunner()

		// when
		result := doubles.Execute(t, provider, entities.CommandCheckIn, request, runner)

		// then
		assert.Equal(t, command(request, "ci", "-f NCI -r fix a.txt"), runner.Args(0))
		assert.NotContains(t, result.CommandLine, "s3cret")
	})

	t.Run("should label the view with a build label", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project)
		request.Parameters = entities.CommandParameters{Name: "REL_1", Message: "release"}
		runner := doubles.NewStubCommandRunner()

		// when
		doubles.Execute(t, provider, entities.CommandTag, request, runner)

		// then
		assert.Equal(t, command(request, "label", "-nl REL_1 -d release -b"), runner.Args(0))
	})

	t.Run("should diff two labels over every file and accept exit code 1", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project)
		request.Parameters = entities.CommandParameters{
			StartVersion:     entities.NewTagVersion("L1"),
			EndVersion:       entities.NewTagVersion("L2"),
			IgnoreWhitespace: true,
		}
		runner := doubles.NewStubCommandRunner().WithFailure(1, "")

		// when
		result := doubles.Execute(t, provider, entities.CommandDiff, request, runner)

		// then
		assert.True(t, result.Success)
		assert.Equal(t, command(request, "diff", "-vl L1 -vl L2 -w -is"), runner.Args(0))
	})

	t.Run("should read the history of the requested files", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project, "a.txt", "b.txt")
		runner := doubles.NewStubCommandRunner()

		// when
		doubles.Execute(t, provider, entities.CommandChangeLog, request, runner)

		// then
		assert.Equal(t, command(request, "hist", "a.txt b.txt"), runner.Args(0))
	})

	t.Run("should check out only the out of date files on update", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project)
		request.Parameters.Version = entities.NewTagVersion("L1")
		runner := doubles.NewStubCommandRunner()

		// when
		doubles.Execute(t, provider, entities.CommandUpdate, request, runner)

		// then
		assert.Equal(t, command(request, "co", "-filter O -eol on -vl L1 -is"), runner.Args(0))
	})
}
