//go:build unit

package perforce_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/perforce"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

func depot() *perforce.Repository {
	return &perforce.Repository{Path: "//depot/proj"}
}

func TestOpenAndStatusConsumers(t *testing.T) {
	t.Parallel()

	t.Run("should keep the perforce action when no status is forced", func(t *testing.T) {
		t.Parallel()

		// given
		output := "//depot/proj/a.txt#1 - opened for add\n" +
			"//depot/proj/src/b.txt#3 - currently opened for edit\n" +
			"//depot/proj/c.txt#none - was delete, reverted\n" +
			"a.txt - no such file(s)."

		// when
		result := doubles.Apply(perforce.NewOpenConsumer(depot(), ""), output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusAdded).WithRevision("1"),
			entities.NewScmFile("src/b.txt", entities.StatusModified).WithRevision("3"),
			entities.NewScmFile("c.txt", entities.StatusDeleted),
		}, result.Files)
	})

	t.Run("should force the given status", func(t *testing.T) {
		t.Parallel()

		// when
		result := doubles.Apply(perforce.NewOpenConsumer(depot(), entities.StatusEdited), "//depot/proj/a.txt#2 - opened for edit")

		// then
		assert.Equal(t, entities.StatusEdited, result.Files[0].Status)
	})

	t.Run("should read opened files and render their depot paths", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := perforce.NewStatusConsumer(depot())
		output := "//depot/proj/a.txt#1 - edit default change (text)\n" +
			"//depot/proj/b.txt#none - add change 12 (text)\n" +
			"//depot/proj/c.txt#4 - lock default change (text)"

		// when
		result := doubles.Apply(consumer, output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusModified),
			entities.NewScmFile("b.txt", entities.StatusAdded),
		}, result.Files)
		assert.Equal(t, []string{"//depot/proj/a.txt", "//depot/proj/b.txt"}, consumer.DepotPaths())
	})
}

func TestTransactionConsumers(t *testing.T) {
	t.Parallel()

	t.Run("should use the renamed change number of a submit", func(t *testing.T) {
		t.Parallel()

		// given
		output := "Submitting change 12.\nLocking 2 files ...\n" +
			"edit //depot/proj/a.txt#2\nadd //depot/proj/b.txt#1\n" +
			"Change 12 renamed change 14 and submitted."

		// when
		result := doubles.Apply(perforce.NewCheckInConsumer(depot()), output)

		// then
		assert.Equal(t, "14", result.Revision)
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusCheckedIn).WithRevision("2"),
			entities.NewScmFile("b.txt", entities.StatusCheckedIn).WithRevision("1"),
		}, result.Files)
	})

	t.Run("should read sync reports", func(t *testing.T) {
		t.Parallel()

		// given
		output := "//depot/proj/a.txt#3 - updating /work/a.txt\n" +
			"//depot/proj/b.txt#1 - added as /work/b.txt\n" +
			"//depot/proj/c.txt#2 - deleted as /work/c.txt\n" +
			"//depot/proj/d.txt#1 - is opened and not being changed"

		// when
		updated := doubles.Apply(perforce.NewSyncConsumer(depot(), entities.StatusUpdated), output)
		checkedOut := doubles.Apply(perforce.NewSyncConsumer(depot(), entities.StatusCheckedOut), output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusUpdated).WithRevision("3"),
			entities.NewScmFile("b.txt", entities.StatusUpdated).WithRevision("1"),
			entities.NewScmFile("c.txt", entities.StatusDeleted).WithRevision("2"),
		}, updated.Files)
		assert.Equal(t, entities.StatusCheckedOut, checkedOut.Files[0].Status)
		assert.Len(t, checkedOut.Files, 3)
	})

	t.Run("should report label synced files as tagged", func(t *testing.T) {
		t.Parallel()

		// when
		result := doubles.Apply(perforce.NewLabelSyncConsumer(depot()), "//depot/proj/a.txt#3 - added\n//depot/proj/b.txt#1 - updated")

		// then
		assert.Equal(t, []string{"a.txt", "b.txt"}, doubles.Paths(result))
		assert.Equal(t, entities.StatusTagged, result.Files[1].Status)
	})
}

func TestHistoryConsumers(t *testing.T) {
	t.Parallel()

	t.Run("should parse long change descriptions", func(t *testing.T) {
		t.Parallel()

		// given
		output := strings.Join([]string{
			"Change 14 on 2024/03/01 10:00:00 by alice@ws",
			"",
			"\tFix things",
			"\tmore",
			"",
			"Change 12 on 2024/02/28 by bob@ws",
			"",
			"\tInitial",
		}, "\n")

		// when
		result := doubles.Apply(perforce.NewChangeLogConsumer(&entities.CommandRequest{}), output)

		// then
		sets := result.ChangeLog.ChangeSets
		require.Len(t, sets, 2)
		assert.Equal(t, entities.ChangeSet{
			Revision: "14",
			Author:   "alice",
			Date:     time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
			Comment:  "Fix things\nmore",
		}, sets[0])
		assert.Equal(t, time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC), sets[1].Date)
	})

	t.Run("should parse annotate lines", func(t *testing.T) {
		t.Parallel()

		// when
		result := doubles.Apply(perforce.NewBlameConsumer(), "14: alice 2024/03/01 first line\n12: bob 2024/02/28 ")

		// then
		require.Len(t, result.Blame, 2)
		assert.Equal(t, entities.BlameLine{
			Revision:   "14",
			Author:     "alice",
			Date:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			LineNumber: 1,
			Line:       "first line",
		}, result.Blame[0])
		assert.Empty(t, result.Blame[1].Line)
	})

	t.Run("should read fstat blocks", func(t *testing.T) {
		t.Parallel()

		// given
		output := "... depotFile //depot/proj/a.txt\n... headType text\n... headRev 3\n... headChange 14\n\n" +
			"... depotFile //depot/proj/b.txt\n... headRev 1"

		// when
		result := doubles.Apply(perforce.NewFstatConsumer(depot()), output)

		// then
		require.Len(t, result.Info, 2)
		assert.Equal(t, entities.InfoItem{
			Path:                "a.txt",
			URL:                 "//depot/proj/a.txt",
			RepositoryRoot:      "//depot/proj",
			Revision:            "3",
			Kind:                "text",
			LastChangedRevision: "14",
		}, result.Info[0])
		assert.Equal(t, "b.txt", result.Info[1].Path)
	})
}
