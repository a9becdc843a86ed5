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

func synergyRequest(t *testing.T) *entities.CommandRequest {
	t.Helper()
	repository, err := synergy.ParseRepository("core|~|1.0|rel1|integrate|alice|secret", "|")
	require.NoError(t, err)
	return &entities.CommandRequest{
		Repository: entities.NewScmRepository(entities.ProviderSynergy, "|", repository),
		FileSet:    entities.NewFileSet("/work"),
	}
}

func TestSessionAndStatusConsumers(t *testing.T) {
	t.Parallel()

	t.Run("should capture the session address", func(t *testing.T) {
		t.Parallel()

		// given
		var address string
		consumer := synergy.NewAddressConsumer(func(value string) { address = value })

		// when
		doubles.Apply(consumer, "Starting session...\nccm.example.com:1234:192.168.1.10")

		// then
		assert.Equal(t, "ccm.example.com:1234:192.168.1.10", address)
	})

	t.Run("should report working objects as modified", func(t *testing.T) {
		t.Parallel()

		// given
		output := strings.Join([]string{
			"working|parser.c~3:csrc:1|/work/src",
			"integrate|lexer.c~1:csrc:1|/work/src",
			"working|main.c~2:csrc:1|",
		}, "\n")

		// when
		result := doubles.Apply(synergy.NewStatusConsumer(synergyRequest(t)), output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("src/parser.c", entities.StatusModified).WithRevision("3"),
			entities.NewScmFile("main.c", entities.StatusModified).WithRevision("2"),
		}, result.Files)
	})

	t.Run("should read replaced and checked in objects", func(t *testing.T) {
		t.Parallel()

		// when
		updated := doubles.Apply(synergy.NewUpdateConsumer("~"), "'parser.c~4' replaces 'parser.c~3' under 'src~2'.")
		checkedIn := doubles.Apply(synergy.NewCheckInConsumer("~"), "Checked in 'parser.c~4' to 'integrate'\nTask 42 checked in")

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("parser.c", entities.StatusUpdated).WithRevision("4"),
		}, updated.Files)
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("parser.c", entities.StatusCheckedIn).WithRevision("4"),
		}, checkedIn.Files)
	})
}

func TestChangeLogConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should merge the objects of one task", func(t *testing.T) {
		t.Parallel()

		// given
		output := strings.Join([]string{
			"parser.c~4:csrc:1|alice|Fri Mar 1 09:00:00 2024|42|Fix parser",
			"lexer.c~2:csrc:1|alice|Fri Mar 1 09:00:30 2024|42|Fix parser",
			"parser.c~3:csrc:1|bob|Thu Feb 1 09:00:00 2024|40|Initial",
			"continued",
		}, "\n")

		// when
		result := doubles.Apply(synergy.NewChangeLogConsumer(synergyRequest(t)), output)

		// then
		sets := result.ChangeLog.ChangeSets
		require.Len(t, sets, 2)
		assert.Equal(t, "42", sets[0].Revision)
		assert.Equal(t, []entities.ChangeFile{
			{Name: "lexer.c", Revision: "2", Action: entities.StatusModified},
			{Name: "parser.c", Revision: "4", Action: entities.StatusModified},
		}, sets[0].Files)
		assert.Equal(t, "Initial\ncontinued", sets[1].Comment)
		assert.Equal(t, time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC), sets[1].Date)
	})
}
