//go:build unit

package scmcore_test

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

func TestStatusTableConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should prefer the longest matching prefix", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := scmcore.NewStatusTableConsumer(map[string]entities.ScmFileStatus{
			"A ":  entities.StatusAdded,
			"AM ": entities.StatusModified,
		})

		// when
		result := doubles.Apply(consumer, "A  a.txt\nAM b.txt\nzz c.txt\n")

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusAdded),
			entities.NewScmFile("b.txt", entities.StatusModified),
		}, result.Files)
	})

	t.Run("should apply the ignore and relativize hooks", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := scmcore.NewStatusTableConsumer(map[string]entities.ScmFileStatus{"M ": entities.StatusModified})
		consumer.Ignore = func(line string) bool { return strings.Contains(line, ".lock") }
		consumer.Relativize = func(path string) string { return scmcore.Relativize("/work", path) }

		// when
		result := doubles.Apply(consumer, "M /work/src/a.txt\nM /work/.lock\nM  ")

		// then
		assert.Equal(t, []string{"src/a.txt"}, doubles.Paths(result))
	})
}

func TestSimpleConsumers(t *testing.T) {
	t.Parallel()

	t.Run("should report the requested files with a fixed status", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := scmcore.NewFixedFilesConsumer([]string{"a.txt", "b.txt"}, entities.StatusEdited)

		// when
		result := doubles.Apply(consumer, "2 files opened for edit")

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusEdited),
			entities.NewScmFile("b.txt", entities.StatusEdited),
		}, result.Files)
		assert.Equal(t, []string{"2 files opened for edit"}, consumer.Lines)
	})

	t.Run("should keep the last matching revision", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := scmcore.NewRevisionConsumer(regexp.MustCompile(`^Change (\d+) submitted`))

		// when
		result := doubles.Apply(consumer, "Change 41 submitted.\nsomething else\nChange 42 submitted.")

		// then
		assert.Equal(t, "42", consumer.Revision())
		assert.Equal(t, "42", result.Revision)
	})

	t.Run("should search collected lines case insensitively and fan lines out", func(t *testing.T) {
		t.Parallel()

		// given
		first, second := &scmcore.LineCollector{}, &scmcore.LineCollector{}

		// when
		doubles.Feed(scmcore.Tee(first, second), "Warning: Access DENIED\nbye")

		// then
		assert.Equal(t, first.Lines, second.Lines)
		assert.True(t, first.ContainsAny("access denied"))
		assert.False(t, first.ContainsAny())
		assert.False(t, first.ContainsAny("timeout"))
		assert.Equal(t, "Warning: Access DENIED\nbye", first.Text())
	})
}

func TestChangeLogHelpers(t *testing.T) {
	t.Parallel()

	t.Run("should try every date layout in turn", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, ok := scmcore.ParseDate(" 2024/03/01 10:00:00 ", time.RFC3339, "2006/01/02 15:04:05")
		_, invalid := scmcore.ParseDate("yesterday", time.RFC3339)

		// then
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC), parsed)
		assert.False(t, invalid)
	})

	t.Run("should filter by date window then merge and limit", func(t *testing.T) {
		t.Parallel()

		// given
		day := func(d int) time.Time { return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC) }
		start, end := day(2), day(4)
		request := &entities.CommandRequest{Parameters: entities.CommandParameters{
			StartDate: &start,
			EndDate:   &end,
			Limit:     2,
		}}
		sets := []entities.ChangeSet{
			{Date: day(1), Author: "a", Comment: "too old"},
			{Date: day(2), Author: "a", Comment: "first", Files: []entities.ChangeFile{{Name: "x"}}},
			{Date: day(2).Add(30 * time.Second), Author: "a", Comment: "first", Files: []entities.ChangeFile{{Name: "y"}}},
			{Date: day(3), Author: "b", Comment: "second"},
			{Date: day(4), Author: "c", Comment: "third"},
			{Date: day(5), Author: "a", Comment: "too new"},
		}

		// when
		changeLog := scmcore.BuildChangeLog(request, sets, true)

		// then
		require.Len(t, changeLog.ChangeSets, 2)
		assert.Equal(t, "third", changeLog.ChangeSets[0].Comment)
		assert.Equal(t, "second", changeLog.ChangeSets[1].Comment)
		assert.Equal(t, &start, changeLog.StartDate)
		assert.Equal(t, &end, changeLog.EndDate)

		unlimited := scmcore.BuildChangeLog(&entities.CommandRequest{}, sets, true)
		require.Len(t, unlimited.ChangeSets, 5)
		assert.Len(t, unlimited.ChangeSets[3].Files, 2)
	})
}

func TestPaths(t *testing.T) {
	t.Parallel()

	t.Run("should relativize tool paths against the base directory", func(t *testing.T) {
		t.Parallel()

		// when
		inside := scmcore.Relativize("/work", "/work/src/a.txt")
		outside := scmcore.Relativize("/work", "/elsewhere/a.txt")
		relative := scmcore.Relativize("/work", "./src//b.txt")

		// then
		assert.Equal(t, "src/a.txt", inside)
		assert.Equal(t, "/elsewhere/a.txt", outside)
		assert.Equal(t, "src/b.txt", relative)
	})

	t.Run("should strip a repository prefix", func(t *testing.T) {
		t.Parallel()

		// when
		stripped := scmcore.StripPrefix("module/", "module/a.txt")
		kept := scmcore.StripPrefix("module", "other/a.txt")

		// then
		assert.Equal(t, "a.txt", stripped)
		assert.Equal(t, "other/a.txt", kept)
	})

	t.Run("should require names and messages", func(t *testing.T) {
		t.Parallel()

		// given
		request := &entities.CommandRequest{Parameters: entities.CommandParameters{Message: "  "}}

		// when
		messageErr := scmcore.RequireMessage(request)
		nameErr := scmcore.RequireName(request)

		// then
		require.Error(t, messageErr)
		require.Error(t, nameErr)
	})
}
