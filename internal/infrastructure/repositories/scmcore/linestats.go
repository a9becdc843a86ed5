package scmcore

import (
	"strings"

	"github.com/ianbruene/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineStats counts the lines added and deleted between two texts.
func LineStats(before, after string) (added, deleted int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(a, b, false), lines)
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			deleted += n
		case diffmatchpatch.DiffEqual:
		}
	}
	return added, deleted
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// UnifiedDiff renders a git style unified diff of one file, or "" when the texts are equal.
func UnifiedDiff(path, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	fromFile, toFile := "a/"+path, "b/"+path
	if before == "" {
		fromFile = "/dev/null"
	}
	if after == "" {
		toFile = "/dev/null"
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  3,
	})
	if err != nil {
		return "", err
	}
	return "diff --git a/" + path + " b/" + path + "\n" + text, nil
}
