//go:build unit

package scmcore_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

// gitDiff builds a git diff touching ten modified files, one added and one deleted file.
func gitDiff() string {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		path := fmt.Sprintf("src/file%02d.txt", i)
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
		b.WriteString("index 1234567..89abcde 100644\n")
		fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
		b.WriteString("@@ -1,3 +1,3 @@\n line one\n-line two\n+line 2\n line three\n")
	}
	b.WriteString("diff --git a/docs/new.md b/docs/new.md\n")
	b.WriteString("new file mode 100644\n")
	b.WriteString("index 0000000..e69de29\n")
	b.WriteString("--- /dev/null\n+++ b/docs/new.md\n")
	b.WriteString("@@ -0,0 +1,2 @@\n+# Title\n+body\n\\ No newline at end of file\n")
	b.WriteString("diff --git a/legacy.txt b/legacy.txt\n")
	b.WriteString("deleted file mode 100644\n")
	b.WriteString("index 1234567..0000000\n")
	b.WriteString("--- a/legacy.txt\n+++ /dev/null\n")
	b.WriteString("@@ -1 +0,0 @@\n-old\n")
	return b.String()
}

func TestUnifiedDiffConsumer(t *testing.T) {
	t.Parallel()

	t.Run("should split a git diff into one entry per file", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := scmcore.NewUnifiedDiffConsumer()
		output := gitDiff()

		// when
		result := doubles.Apply(consumer, output)

		// then
		require.Len(t, result.Files, 12)
		assert.Len(t, result.Differences, 12)
		assert.Equal(t, entities.NewScmFile("src/file01.txt", entities.StatusModified), result.Files[0])
		assert.Equal(t, entities.NewScmFile("docs/new.md", entities.StatusAdded), result.Files[10])
		assert.Equal(t, entities.NewScmFile("legacy.txt", entities.StatusDeleted), result.Files[11])
		assert.Equal(t,
			"@@ -1,3 +1,3 @@\n line one\n-line two\n+line 2\n line three\n",
			result.Differences["src/file07.txt"],
		)
		assert.Equal(t, "@@ -0,0 +1,2 @@\n+# Title\n+body\n\\ No newline at end of file\n", result.Differences["docs/new.md"])
		assert.Equal(t, output, result.Patch)
		assert.Len(t, consumer.Paths(), 12)
	})

	t.Run("should read svn and cvs index headers", func(t *testing.T) {
		t.Parallel()

		// given
		output := strings.Join([]string{
			"Index: a.txt",
			"===================================================================",
			"--- a.txt\t(revision 1)",
			"+++ a.txt\t(working copy)",
			"@@ -1 +1 @@",
			"-old",
			"+new",
			"Index: lib/b.txt",
			"===================================================================",
			"--- lib/b.txt\t(nonexistent)",
			"+++ lib/b.txt\t(working copy)",
			"@@ -0,0 +1 @@",
			"+fresh",
		}, "\n")

		// when
		result := doubles.Apply(scmcore.NewUnifiedDiffConsumer(), output)

		// then
		assert.Equal(t, []string{"a.txt", "lib/b.txt"}, doubles.Paths(result))
		assert.Equal(t, "@@ -1 +1 @@\n-old\n+new\n", result.Differences["a.txt"])
		assert.Equal(t, "@@ -0,0 +1 @@\n+fresh\n", result.Differences["lib/b.txt"])
	})

	t.Run("should read mercurial bazaar and perforce headers", func(t *testing.T) {
		t.Parallel()

		// given
		consumer := scmcore.NewUnifiedDiffConsumer()
		consumer.PathOf = func(path string) string { return strings.TrimPrefix(path, "//depot/proj/") }
		output := strings.Join([]string{
			"diff -r 3f2a1b4c5d6e hg.txt",
			"--- a/hg.txt\tMon Mar 04 10:00:00 2024 +0000",
			"+++ b/hg.txt\tMon Mar 04 11:00:00 2024 +0000",
			"@@ -1 +1 @@",
			"-a",
			"+b",
			"=== modified file 'bzr.txt'",
			"--- bzr.txt\t2024-03-04 10:00:00 +0000",
			"+++ bzr.txt\t2024-03-04 11:00:00 +0000",
			"@@ -1 +1 @@",
			"-c",
			"+d",
			"==== //depot/proj/p4.txt#3 (text) - //depot/proj/p4.txt#4 (text) ==== content",
			"@@ -1 +1 @@",
			"-e",
			"+f",
		}, "\n")

		// when
		result := doubles.Apply(consumer, output)

		// then
		assert.Equal(t, []string{"hg.txt", "bzr.txt", "p4.txt"}, doubles.Paths(result))
		assert.Equal(t, "@@ -1 +1 @@\n-e\n+f\n", result.Differences["p4.txt"])
	})

	t.Run("should fall back to the new file name of a headerless diff", func(t *testing.T) {
		t.Parallel()

		// given
		output := "--- a/x.txt\t2024-03-04\n+++ b/x.txt\t2024-03-04\n@@ -1 +1 @@\n-1\n+2"

		// when
		result := doubles.Apply(scmcore.NewUnifiedDiffConsumer(), output)

		// then
		assert.Equal(t, []entities.ScmFile{entities.NewScmFile("x.txt", entities.StatusModified)}, result.Files)
		assert.Equal(t, "@@ -1 +1 @@\n-1\n+2\n", result.Differences["x.txt"])
	})
}

func TestUnifiedDiffRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("should render a diff the consumer reads back", func(t *testing.T) {
		t.Parallel()

		// given
		before := "one\ntwo\nthree\n"
		after := "one\n2\nthree\nfour\n"

		// when
		text, err := scmcore.UnifiedDiff("notes.txt", before, after)

		// then
		require.NoError(t, err)
		result := doubles.Apply(scmcore.NewUnifiedDiffConsumer(), text)
		assert.Equal(t, []entities.ScmFile{entities.NewScmFile("notes.txt", entities.StatusModified)}, result.Files)
		assert.Contains(t, result.Differences["notes.txt"], "-two\n+2\n")
		added, deleted := scmcore.LineStats(before, after)
		assert.Equal(t, 2, added)
		assert.Equal(t, 1, deleted)
	})

	t.Run("should render nothing for equal texts and dev null for new files", func(t *testing.T) {
		t.Parallel()

		// when
		same, sameErr := scmcore.UnifiedDiff("a.txt", "x\n", "x\n")
		created, createdErr := scmcore.UnifiedDiff("b.txt", "", "x\n")

		// then
		require.NoError(t, sameErr)
		require.NoError(t, createdErr)
		assert.Empty(t, same)
		assert.Contains(t, created, "--- /dev/null")
		result := doubles.Apply(scmcore.NewUnifiedDiffConsumer(), created)
		assert.Equal(t, entities.StatusAdded, result.Files[0].Status)
	})
}
