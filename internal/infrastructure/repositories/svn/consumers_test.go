//go:build unit

package svn_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/svn"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

func TestStatusConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should map the first status column and relativize absolute paths", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := svn.NewStatusConsumer("/work")
		output := strings.Join([]string{
			"M       /work/src/a.txt",
			"A  +    b.txt",
			"?       c.txt",
			"!       d.txt",
			" M      e.txt",
			"D       f.txt",
			"C       g.txt",
			"",
			"Performing status on external item at 'ext'",
			"X       ext",
		}, "\n")

		// when
		result := doubles.Apply(consumer, output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("src/a.txt", entities.StatusModified),
			entities.NewScmFile("b.txt", entities.StatusAdded),
			entities.NewScmFile("c.txt", entities.StatusUnknown),
			entities.NewScmFile("d.txt", entities.StatusMissing),
			entities.NewScmFile("e.txt", entities.StatusModified),
			entities.NewScmFile("f.txt", entities.StatusDeleted),
			entities.NewScmFile("g.txt", entities.StatusConflict),
			entities.NewScmFile("ext", entities.StatusExternal),
		}, result.Files)
	})
}

func TestUpdateConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should report updated files and the new revision", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := svn.NewUpdateConsumer("/work", entities.StatusAdded)
		output := "Updating '.':\nA    new.txt\nU    changed.txt\nD    gone.txt\nC    conflict.txt\nG    merged.txt\nUpdated to revision 42."

		// when
		result := doubles.Apply(consumer, output)

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("new.txt", entities.StatusAdded),
			entities.NewScmFile("changed.txt", entities.StatusUpdated),
			entities.NewScmFile("gone.txt", entities.StatusDeleted),
			entities.NewScmFile("conflict.txt", entities.StatusConflict),
			entities.NewScmFile("merged.txt", entities.StatusPatched),
		}, result.Files)
		assert.Equal(t, "42", result.Revision)
	})

	t.Run("should report checked out files with the checkout status", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := svn.NewUpdateConsumer("/work", entities.StatusCheckedOut)

		// when
		result := doubles.Apply(consumer, "A    /work/pom.xml\nA    /work/src\nChecked out revision 7.")

		// then
		assert.Equal(t, []string{"pom.xml", "src"}, doubles.Paths(result))
		assert.Equal(t, entities.StatusCheckedOut, result.Files[0].Status)
		assert.Equal(t, "7", result.Revision)
	})
}

func TestCheckInConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should stamp every committed file with the new revision", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := svn.NewCheckInConsumer("/work")
		output := "Sending        a.txt\nAdding  (bin)  img.png\nDeleting       old.txt\nTransmitting file data ..\nCommitted revision 43."

		// when
		result := doubles.Apply(consumer, output)

		// then
		assert.Equal(t, "43", result.Revision)
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("a.txt", entities.StatusCheckedIn).WithRevision("43"),
			entities.NewScmFile("img.png", entities.StatusCheckedIn).WithRevision("43"),
			entities.NewScmFile("old.txt", entities.StatusCheckedIn).WithRevision("43"),
		}, result.Files)
	})

	t.Run("should read add and delete markers", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := svn.NewAddRemoveConsumer("/work")

		// when
		result := doubles.Apply(consumer, "A         docs\nA  (bin)  docs/logo.png\nD         legacy.txt")

		// then
		assert.Equal(t, []entities.ScmFile{
			entities.NewScmFile("docs", entities.StatusAdded),
			entities.NewScmFile("docs/logo.png", entities.StatusAdded),
			entities.NewScmFile("legacy.txt", entities.StatusDeleted),
		}, result.Files)
	})
}

func TestChangeLogConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should parse verbose log entries", func(t *testing.T) {
		t.Parallel()

		// given
		separator := strings.Repeat("-", 72)
		output := strings.Join([]string{
			separator,
			"r43 | alice | 2024-03-01 10:00:00 +0100 (Fri, 01 Mar 2024) | 2 lines",
			"Changed paths:",
			"   M /trunk/a.txt",
			"   A /trunk/b.txt (from /trunk/a.txt:42)",
			"",
			"Fix things",
			"and more",
			separator,
			"r42 | bob | 2024-02-28 09:00:00 +0000 (Wed, 28 Feb 2024) | 1 line",
			"Changed paths:",
			"   D /trunk/old.txt",
			"",
			"Remove old",
			separator,
		}, "\n")
		consumer := svn.NewChangeLogConsumer(&entities.CommandRequest{})

		// when
		result := doubles.Apply(consumer, output)

		// then
		sets := result.ChangeLog.ChangeSets
		require.Len(t, sets, 2)
		assert.Equal(t, "43", sets[0].Revision)
		assert.Equal(t, "alice", sets[0].Author)
		assert.Equal(t, "Fix things\nand more", sets[0].Comment)
		assert.True(t, sets[0].Date.Equal(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)))
		assert.Equal(t, []entities.ChangeFile{
			{Name: "/trunk/a.txt", Revision: "43", Action: entities.StatusModified},
			{Name: "/trunk/b.txt", Revision: "43", PreviousRevision: "42", Action: entities.StatusAdded},
		}, sets[0].Files)
		assert.Equal(t, "Remove old", sets[1].Comment)
		assert.Equal(t, entities.StatusDeleted, sets[1].Files[0].Action)
	})
}

func TestBlameAndInfoConsumers(t *testing.T) {
	t.Parallel()

	t.Run("should decode the xml blame document", func(t *testing.T) {
		t.Parallel()

		// given
		output := `<?xml version="1.0" encoding="UTF-8"?>
<blame>
<target path="a.txt">
<entry line-number="1">
<commit revision="3">
<author>alice</author>
<date>2024-03-01T10:00:00.000000Z</date>
</commit>
</entry>
<entry line-number="2">
<commit revision="5">
<author>bob</author>
<date>2024-03-02T11:30:00.000000Z</date>
</commit>
</entry>
</target>
</blame>`

		// when
		result := doubles.Apply(svn.NewBlameConsumer(), output)

		// then
		require.Len(t, result.Blame, 2)
		assert.Equal(t, entities.BlameLine{
			Revision:   "3",
			Author:     "alice",
			Date:       time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
			LineNumber: 1,
		}, result.Blame[0])
		assert.Equal(t, "bob", result.Blame[1].Author)
	})

	t.Run("should ignore a truncated blame document", func(t *testing.T) {
		t.Parallel()

		// when
		result := doubles.Apply(svn.NewBlameConsumer(), "<blame><target")

		// then
		assert.Empty(t, result.Blame)
	})

	t.Run("should read info blocks and take the revision of the first", func(t *testing.T) {
		t.Parallel()

		// given
		output := "Path: .\nURL: https://svn.example.com/repo/trunk\nRepository Root: https://svn.example.com/repo\n" +
			"Repository UUID: 1234\nRevision: 42\nNode Kind: directory\nLast Changed Author: alice\nLast Changed Rev: 41\n\n" +
			"Path: pom.xml\nRevision: 42\nNode Kind: file\n"

		// when
		result := doubles.Apply(svn.NewInfoConsumer(), output)

		// then
		require.Len(t, result.Info, 2)
		assert.Equal(t, "https://svn.example.com/repo", result.Info[0].RepositoryRoot)
		assert.Equal(t, "41", result.Info[0].LastChangedRevision)
		assert.Equal(t, "file", result.Info[1].Kind)
		assert.Equal(t, "42", result.Revision)
	})

	t.Run("should collect listed tag names", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := svn.NewNamesConsumer(func(result *entities.ScmResult, name string) { result.AddTag(name, "") })

		// when
		result := doubles.Apply(consumer, "1.0/\n2.0/\n")

		// then
		assert.Equal(t, map[string]string{"1.0": "", "2.0": ""}, result.Tags)
	})
}
