package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// mergeWindow is the largest gap between two per-file entries that still belong to one commit.
const mergeWindow = time.Minute

// ChangeFile is one file touched by a change set.
type ChangeFile struct {
	Name             string
	Revision         string
	PreviousRevision string
	Action           ScmFileStatus
}

// ChangeSet is one commit, or a group of per-file revisions that form one logical commit.
type ChangeSet struct {
	Date     time.Time
	Author   string
	Comment  string
	Revision string
	Files    []ChangeFile
}

// ChangeLogSet is the changelog command payload.
type ChangeLogSet struct {
	StartDate    *time.Time
	EndDate      *time.Time
	StartVersion *ScmVersion
	EndVersion   *ScmVersion
	ChangeSets   []ChangeSet
}

// ContainsFile reports whether the change set touched name.
func (c *ChangeSet) ContainsFile(name string) bool {
	for _, f := range c.Files {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Summary is the first line of the comment.
func (c *ChangeSet) Summary() string {
	summary, _, _ := strings.Cut(strings.TrimSpace(c.Comment), "\n")
	return summary
}

// MergeChangeSets folds entries with the same author and comment into one change set while
// each entry lies within one minute of the previous entry of that commit, even when entries
// of other commits are interleaved. File based tools (cvs, starteam) report one entry per
// file revision. The result is ordered newest first.
func MergeChangeSets(sets []ChangeSet) []ChangeSet {
	sorted := append([]ChangeSet{}, sets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	type group struct {
		index  int
		oldest time.Time
	}
	open := make(map[string]*group)
	merged := make([]ChangeSet, 0, len(sorted))
	for _, set := range sorted {
		key := set.Author + "\x00" + strings.TrimSpace(set.Comment)
		if g, found := open[key]; found && withinWindow(g.oldest, set.Date) {
			target := &merged[g.index]
			for _, f := range set.Files {
				if !target.ContainsFile(f.Name) {
					target.Files = append(target.Files, f)
				}
			}
			g.oldest = set.Date
			continue
		}
		set.Files = append([]ChangeFile{}, set.Files...)
		merged = append(merged, set)
		open[key] = &group{index: len(merged) - 1, oldest: set.Date}
	}
	return merged
}

func withinWindow(a, b time.Time) bool {
	gap := a.Sub(b)
	if gap < 0 {
		gap = -gap
	}
	return gap <= mergeWindow
}

// RenderMarkdown produces a Keep-a-Changelog section, one bullet per change set.
func (s *ChangeLogSet) RenderMarkdown(heading string) string {
	var b strings.Builder
	b.WriteString("## [" + heading + "]")
	if s.EndDate != nil {
		b.WriteString(" - " + s.EndDate.Format("2006-01-02"))
	}
	b.WriteString("\n\n### Changed\n\n")
	for _, line := range s.Bullets() {
		b.WriteString(line + "\n")
	}
	return b.String()
}

// Bullets renders one "- summary (author, revision)" line per change set.
func (s *ChangeLogSet) Bullets() []string {
	bullets := make([]string, 0, len(s.ChangeSets))
	for i := range s.ChangeSets {
		set := &s.ChangeSets[i]
		ref := set.Author
		if set.Revision != "" {
			ref = fmt.Sprintf("%s, %s", set.Author, set.Revision)
		}
		bullets = append(bullets, fmt.Sprintf("- %s (%s)", set.Summary(), ref))
	}
	return bullets
}

const (
	unreleasedHeading = "## [Unreleased]"
	changedHeading    = "### Changed"
)

// InsertIntoChangelog adds the bullets under "## [Unreleased]" / "### Changed" of an existing
// Keep-a-Changelog document, creating the subsection when absent. Content without an
// Unreleased section is returned unchanged.
func InsertIntoChangelog(content string, bullets []string) string {
	if len(bullets) == 0 {
		return content
	}

	lines := strings.Split(content, "\n")
	unreleased := indexOfLine(lines, 0, len(lines), func(l string) bool { return l == unreleasedHeading })
	if unreleased < 0 {
		return content
	}
	sectionEnd := indexOfLine(lines, unreleased+1, len(lines), func(l string) bool { return strings.HasPrefix(l, "## [") })
	if sectionEnd < 0 {
		sectionEnd = len(lines)
	}

	changed := indexOfLine(lines, unreleased+1, sectionEnd, func(l string) bool { return l == changedHeading })
	if changed < 0 {
		block := append([]string{"", changedHeading, ""}, bullets...)
		return strings.Join(spliceLines(lines, unreleased+1, block), "\n")
	}

	at := changed
	for i := changed + 1; i < sectionEnd; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "- ") {
			break
		}
		at = i
	}
	return strings.Join(spliceLines(lines, at+1, bullets), "\n")
}

func indexOfLine(lines []string, from, to int, match func(string) bool) int {
	for i := from; i < to; i++ {
		if match(strings.TrimSpace(lines[i])) {
			return i
		}
	}
	return -1
}

func spliceLines(lines []string, at int, extra []string) []string {
	out := make([]string, 0, len(lines)+len(extra))
	out = append(out, lines[:at]...)
	out = append(out, extra...)
	return append(out, lines[at:]...)
}
