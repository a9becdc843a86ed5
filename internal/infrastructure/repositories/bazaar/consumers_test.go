//go:build unit

package bazaar_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/bazaar"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

func TestStatusConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should read the section layout", func(t *testing.T) {
		t.Parallel()

		// given
		output := strings.Join([]string{
			"modified:",
			"  a.txt",
			"added:",
			"  b.txt",
			"renamed:",
			"  old.txt => new.txt",
			"unknown:",
			"  c.txt",
			"kind changed:",
			"  d (file => directory)",
			"pending merges:",
			"  alice 2024-03-01 merge",
		}, "\n")

		// when
		result := doubles.Apply(bazaar.NewStatusConsumer(), output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusModified),
			entities.NewScmFile("b.txt", entities.StatusAdded),
			{Path: "new.txt", Status: entities.StatusRenamed, OriginalPath: "old.txt"},
			entities.NewScmFile("c.txt", entities.StatusUnknown),
			entities.NewScmFile("d", entities.StatusModified),
		}, result.Files)
	})
}

func TestTransactionConsumers(t *testing.T) {
	t.Parallel()

	t.Run("should read the commit report", func(t *testing.T) {
		t.Parallel()

		// given
		output := "Committing to: /work/\nmodified a.txt\nadded b.txt\nrenamed x.txt => y.txt\nCommitted revision 3."

		// when
		result := doubles.Apply(bazaar.NewCheckInConsumer(), output)

		// then
		assert.Equal(t, []string{"a.txt", "b.txt", "y.txt"}, doubles.Paths(result))
		assert.Equal(t, entities.StatusCheckedIn, result.Files[0].Status)
		assert.Equal(t, "3", result.Revision)
	})

	t.Run("should read the verbose update report", func(t *testing.T) {
		t.Parallel()

		// given
		output := "+N  new.txt\n M  a.txt\n-D  gone.txt\nAll changes applied successfully.\nNow on revision 4."

		// when
		result := doubles.Apply(bazaar.NewUpdateConsumer(entities.StatusUpdated), output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("new.txt", entities.StatusAdded),
			entities.NewScmFile("a.txt", entities.StatusUpdated),
			entities.NewScmFile("gone.txt", entities.StatusDeleted),
		}, result.Files)
	})

	t.Run("should read add and remove reports", func(t *testing.T) {
		t.Parallel()

		// when
		added := doubles.Apply(bazaar.NewAddConsumer(), "adding a.txt")
		removed := doubles.Apply(bazaar.NewRemoveConsumer(), "deleted b.txt\nremoved c.txt")

		// then
		assert.Equal(t, []string{"a.txt"}, doubles.Paths(added))
		assert.Equal(t, []string{"b.txt", "c.txt"}, doubles.Paths(removed))
	})

	t.Run("should list files and skip directories", func(t *testing.T) {
		t.Parallel()

		// when
		result := doubles.Apply(bazaar.NewListConsumer(entities.StatusCheckedIn), "a.txt\ndocs/\ndocs/b.txt")

		// then
		assert.Equal(t, []string{"a.txt", "docs/b.txt"}, doubles.Paths(result))
	})
}

func TestChangeLogConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should parse verbose log entries", func(t *testing.T) {
		t.Parallel()

		// given
		separator := strings.Repeat("-", 60)
		output := strings.Join([]string{
			separator,
			"revno: 2",
			"committer: Alice <alice@example.com>",
			"branch nick: trunk",
			"timestamp: Fri 2024-03-01 10:00:00 +0100",
			"message:",
			"  Fix things",
			"added:",
			"  docs/new.txt",
			"modified:",
			"  a.txt",
			separator,
			"revno: 1",
			"author: Bob",
			"committer: Carol",
			"timestamp: Thu 2024-02-29 09:00:00 +0000",
			"message:",
			"  Initial",
		}, "\n")

		// when
		result := doubles.Apply(bazaar.NewChangeLogConsumer(&entities.CommandRequest{}), output)

		// then
		sets := result.ChangeLog.ChangeSets
		require.Len(t, sets, 2)
		assert.Equal(t, "2", sets[0].Revision)
		assert.Equal(t, "Alice <alice@example.com>", sets[0].Author)
		assert.Equal(t, "Fix things", sets[0].Comment)
		assert.True(t, sets[0].Date.Equal(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)))
		assert.Equal(t, []entities.ChangeFile{
			{Name: "docs/new.txt", Revision: "2", Action: entities.StatusAdded},
			{Name: "a.txt", Revision: "2", Action: entities.StatusModified},
		}, sets[0].Files)
		assert.Equal(t, "Bob", sets[1].Author)
		assert.Equal(t, "Initial", sets[1].Comment)
	})
}

func TestBlameConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should parse long annotate lines", func(t *testing.T) {
		t.Parallel()

		// given
		output := "2       alice@example.com 20240301 | first\n1       bob@example.com   20240229 | second"

		// when
		result := doubles.Apply(bazaar.NewBlameConsumer(), output)

		// then
		require.Len(t, result.Blame, 2)
		assert.Equal(t, entities.BlameLine{
			Revision:   "2",
			Author:     "alice@example.com",
			Date:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			LineNumber: 1,
			Line:       "first",
		}, result.Blame[0])
		assert.Equal(t, "second", result.Blame[1].Line)
	})
}
