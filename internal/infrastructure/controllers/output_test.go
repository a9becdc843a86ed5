//go:build unit

package controllers_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/controllers"
)

func TestPrinter_Result(t *testing.T) {
	t.Parallel()

	t.Run("should print the line counts of every diffed file", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		result := entities.NewSuccessResult("")
		result.AddFiles(
			entities.NewScmFile("b.txt", entities.StatusAdded),
			entities.NewScmFile("a.txt", entities.StatusModified),
		)
		result.AddDiffStat("b.txt", 3, 0)
		result.AddDiffStat("a.txt", 2, 1)

		// when
		controllers.NewPrinter(&out).Result(entities.CommandDiff, result)

		// then
		assert.Contains(t, out.String(), "a.txt | +2 -1\nb.txt | +3 -0\n")
		assert.Contains(t, out.String(), "2 files, 2 changed\n")
	})

	t.Run("should count the committed files of a checkin", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		result := entities.NewSuccessResult("")
		result.AddFiles(
			entities.NewScmFile("a.txt", entities.StatusCheckedIn),
			entities.NewScmFile("b.txt", entities.StatusUnknown),
		)

		// when
		controllers.NewPrinter(&out).Result(entities.CommandCheckIn, result)

		// then
		assert.Contains(t, out.String(), "2 files, 1 committed\n")
	})

	t.Run("should count the updated files of an update", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		result := entities.NewSuccessResult("")
		result.AddFiles(entities.NewScmFile("a.txt", entities.StatusUpdated))

		// when
		controllers.NewPrinter(&out).Result(entities.CommandUpdate, result)

		// then
		assert.Contains(t, out.String(), "1 file, 1 updated\n")
	})

	t.Run("should only count the files of other commands", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		result := entities.NewSuccessResult("")
		result.AddFiles(entities.NewScmFile("a.txt", entities.StatusCheckedOut))

		// when
		controllers.NewPrinter(&out).Result(entities.CommandList, result)

		// then
		assert.Contains(t, out.String(), "1 file\n")
		assert.NotContains(t, out.String(), "1 file,")
	})

	t.Run("should render the change log as a markdown section when asked to", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		end := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
		result := entities.NewSuccessResult("")
		result.ChangeLog = &entities.ChangeLogSet{
			EndDate:    &end,
			ChangeSets: []entities.ChangeSet{{Author: "bob", Revision: "42", Comment: "fix the build"}},
		}

		// when
		controllers.NewPrinter(&out).WithMarkdownHeading("1.2.0").Result(entities.CommandChangeLog, result)

		// then
		assert.Equal(t, "## [1.2.0] - 2024-03-09\n\n### Changed\n\n- fix the build (bob, 42)\n", out.String())
	})
}
