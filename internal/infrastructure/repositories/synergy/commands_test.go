//go:build unit

package synergy_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/synergy"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

const (
	project = "core:~:1.0:2.0:integrate:alice:s3cret"
	address = "ccmhost:8400:10.0.0.7"
	start   = "start -nogui -m -q -n alice -pw s3cret -r build_mgr"
)

func TestCommands(t *testing.T) {
	t.Parallel()

	provider := synergy.NewProvider(entities.NewDefaultSettings())

	t.Run("should check in the default task inside a session", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project)
		request.Parameters.Message = "fix"
		runner := doubles.NewStubCommandRunner().
			WithOutput(address).
			WithOutput("Checked in 'a.txt~2' to 'integrate'\nChecked in 'b.txt~5' to 'integrate'")

		// when
		result := doubles.Execute(t, provider, entities.CommandCheckIn, request, runner)

		// then
		require.Equal(t, 3, runner.CallCount())
		assert.Equal(t, start, runner.Args(0))
		assert.Equal(t, "task -checkin default -comment fix", runner.Args(1))
		assert.Equal(t, address, runner.Invocations[1].Env["CCM_ADDR"])
		assert.Equal(t, "stop", runner.Args(2))
		assert.Equal(t, address, runner.Invocations[2].Env["CCM_ADDR"])
		require.Len(t, result.Files, 2)
		assert.Equal(t, "a.txt", result.Files[0].Path)
		assert.Equal(t, "2", result.Files[0].Revision)
		assert.NotContains(t, result.CommandLine, "s3cret")
	})

	t.Run("should stop the session when the checkin fails", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project)
		request.Parameters.Message = "fix"
		runner := doubles.NewStubCommandRunner().
			WithOutput(address).
			WithFailure(0, "Error: the default task is not set")

		// when
		result := doubles.Execute(t, provider, entities.CommandCheckIn, request, runner)

		// then
		assert.False(t, result.Success)
		require.Equal(t, 3, runner.CallCount())
		assert.Equal(t, "stop", runner.Args(2))
	})

	t.Run("should create a baseline of the project as the tag", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project)
		request.Parameters = entities.CommandParameters{Name: "REL_1", Message: "release"}
		runner := doubles.NewStubCommandRunner().WithOutput(address)

		// when
		result := doubles.Execute(t, provider, entities.CommandTag, request, runner)

		// then
		assert.Equal(t,
			"baseline -create REL_1 -description release -release 2.0 -purpose integrate -project core~1.0 -subprojects",
			runner.Args(1),
		)
		assert.Equal(t, map[string]string{"REL_1": ""}, result.Tags)
	})

	t.Run("should query the object versions of the project as the changelog", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project)
		since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		request.Parameters = entities.CommandParameters{StartDate: &since}
		runner := doubles.NewStubCommandRunner().
			WithOutput(address).
			WithOutput(strings.Join([]string{
				"a.txt~3:ascii:1|bob|2024-03-04 09:00:00|42|first line",
				"second line",
				"b.txt~7:ascii:1|carol|2024-03-06 11:30:00|43|other change",
			}, "\n"))

		// when
		result := doubles.Execute(t, provider, entities.CommandChangeLog, request, runner)

		// then
		assert.Equal(t, []string{
			"query", "-u", "-f", synergy.ChangeLogFormat,
			"is_member_of('core~1.0') and create_time>time('2024/03/01 00:00:00')",
		}, runner.Invocations[1].Args)
		sets := result.ChangeLog.ChangeSets
		require.Len(t, sets, 2)
		assert.Equal(t, "first line\nsecond line", sets[0].Comment)
		assert.Equal(t, "42", sets[0].Revision)
		assert.Equal(t, "b.txt", sets[1].Files[0].Name)
		assert.Equal(t, "7", sets[1].Files[0].Revision)
	})

	t.Run("should update the project and report the replaced objects", func(t *testing.T) {
		t.Parallel()

		// given
		request := doubles.NewRequest(t, provider, project)
		runner := doubles.NewStubCommandRunner().
			WithOutput(address).
			WithOutput("'a.txt~4' replaces 'a.txt~3' under 'core~1.0'.")

		// when
		result := doubles.Execute(t, provider, entities.CommandUpdate, request, runner)

		// then
		assert.Equal(t, "update -r -p core~1.0", runner.Args(1))
		require.Len(t, result.Files, 1)
		assert.Equal(t, entities.NewScmFile("a.txt", entities.StatusUpdated).WithRevision("4"), result.Files[0])
	})
}
