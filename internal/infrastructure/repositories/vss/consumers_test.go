//go:build unit

package vss_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/vss"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

func TestGetConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should follow project headers and replaced copies", func(t *testing.T) {
		t.Parallel()

		// given
		output := strings.Join([]string{
			"$/Product:",
			"Getting a.txt",
			"",
			"$/Product/src:",
			"Getting b.txt",
			"Replacing local copy of c.txt",
		}, "\n")

		// when
		result := doubles.Apply(vss.NewGetConsumer("$/Product", entities.StatusCheckedOut), output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusCheckedOut),
			entities.NewScmFile("src/b.txt", entities.StatusCheckedOut),
			entities.NewScmFile("src/c.txt", entities.StatusUpdated),
		}, result.Files)
	})
}

func TestStatusConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should map the diff sections per project", func(t *testing.T) {
		t.Parallel()

		// given
		output := strings.Join([]string{
			"Diffing: $/Product/a.txt",
			"Against: C:\\work\\a.txt",
			"  3  Change: old",
			"",
			"Local files not in the current project:",
			"  new.txt  other.txt",
			"SourceSafe files not in the current folder:",
			"  gone.txt",
			"",
			"$/Product/src:",
			"SourceSafe files different from local files:",
			"  b.txt",
		}, "\n")

		// when
		result := doubles.Apply(vss.NewStatusConsumer("$/Product"), output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusModified),
			entities.NewScmFile("new.txt", entities.StatusUnknown),
			entities.NewScmFile("other.txt", entities.StatusUnknown),
			entities.NewScmFile("gone.txt", entities.StatusMissing),
			entities.NewScmFile("src/b.txt", entities.StatusModified),
		}, result.Files)
	})
}

func TestChangeLogConsumer(t *testing.T) {
	t.Parallel()

	request := func() *entities.CommandRequest {
		repository, err := vss.ParseRepository("alice@//fileserver/vss|$/Product", "|")
		if err != nil {
			panic(err)
		}
		return &entities.CommandRequest{
			Repository: entities.NewScmRepository(entities.ProviderVSS, "|", repository),
			FileSet:    entities.NewFileSet("/work"),
		}
	}

	t.Run("should merge file histories of the same check in", func(t *testing.T) {
		t.Parallel()

		// given
		output := strings.Join([]string{
			"*****  a.txt  *****",
			"Version 3",
			"User: Alice        Date:  3/01/24   Time: 10:15a",
			"Checked in $/Product",
			"Comment: Fix the parser",
			"",
			"*****  b.txt  *****",
			"Version 2",
			"User: Alice        Date:  3/01/24   Time: 10:15a",
			"Checked in $/Product",
			"Comment: Fix the parser",
			"",
			"*****************  Version 7   *****************",
			"User: Bob          Date:  2/01/24   Time:  9:00a",
			"Checked in $/Product/src",
			"Comment: Initial",
		}, "\n")

		// when
		result := doubles.Apply(vss.NewChangeLogConsumer(request()), output)

		// then
		sets := result.ChangeLog.ChangeSets
		require.Len(t, sets, 2)
		assert.Equal(t, "Alice", sets[0].Author)
		assert.Equal(t, "Fix the parser", sets[0].Comment)
		assert.Equal(t, time.Date(2024, time.March, 1, 10, 15, 0, 0, time.UTC), sets[0].Date)
		assert.Equal(t, []entities.ChangeFile{
			{Name: "a.txt", Revision: "3", Action: entities.StatusModified},
			{Name: "b.txt", Revision: "2", Action: entities.StatusModified},
		}, sets[0].Files)
		assert.Equal(t, "Bob", sets[1].Author)
		assert.Equal(t, "7", sets[1].Revision)
	})
}
