package controllers

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aquilax/truncate"
	"github.com/dustin/go-humanize"
	"github.com/gertd/go-pluralize"
	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

const summaryWidth = 72

// Printer renders results for a terminal.
type Printer struct {
	out       io.Writer
	pluralize *pluralize.Client
	now       func() time.Time
	// markdownHeading switches the changelog to a Keep-a-Changelog section.
	markdownHeading string
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, pluralize: pluralize.NewClient(), now: time.Now}
}

// WithMarkdownHeading prints change logs as a Markdown section under heading.
func (it *Printer) WithMarkdownHeading(heading string) *Printer {
	it.markdownHeading = heading
	return it
}

// Count renders "1 file" or "3 files".
func (it *Printer) Count(word string, count int) string {
	return it.pluralize.Pluralize(word, count, true)
}

// Summary cuts a commit comment down to one line.
func Summary(comment string) string {
	summary, _, _ := strings.Cut(strings.TrimSpace(comment), "\n")
	return truncate.Truncate(summary, summaryWidth, truncate.DEFAULT_OMISSION, truncate.PositionEnd)
}

// Result prints every payload the command may have filled.
func (it *Printer) Result(command entities.CommandType, result *entities.ScmResult) {
	if result.DryRun {
		it.printf("dry run: %s\n", result.CommandLine)
		return
	}
	if !result.Success {
		it.printf("FAILED: %s\n", result.ProviderMessage)
		if output := strings.TrimSpace(result.CommandOutput); output != "" {
			it.printf("%s\n", output)
		}
		return
	}

	for _, file := range result.Files {
		it.printf("%-12s %s\n", file.Status, file.Path)
	}
	if result.Revision != "" {
		it.printf("revision %s\n", result.Revision)
	}
	it.changeLog(result.ChangeLog)
	it.blame(result.Blame)
	it.info(result.Info)
	it.refs("branch", result.Branches)
	it.refs("tag", result.Tags)
	it.diffStats(result.DiffStats)
	if result.Patch != "" {
		it.printf("%s", result.Patch)
		if !strings.HasSuffix(result.Patch, "\n") {
			it.printf("\n")
		}
	}
	if len(result.Files) > 0 {
		it.printf("%s\n", it.fileSummary(command, result.Files))
	}
}

// fileSummary counts the files, and among them those the command is about.
func (it *Printer) fileSummary(command entities.CommandType, files []entities.ScmFile) string {
	var matches func(entities.ScmFileStatus) bool
	verb := ""
	switch command {
	case entities.CommandCheckIn, entities.CommandAdd, entities.CommandRemove, entities.CommandTag:
		matches, verb = entities.ScmFileStatus.IsTransaction, "committed"
	case entities.CommandUpdate, entities.CommandCheckOut:
		matches, verb = entities.ScmFileStatus.IsUpdate, "updated"
	case entities.CommandStatus, entities.CommandDiff:
		matches, verb = entities.ScmFileStatus.IsDiff, "changed"
	}
	summary := it.Count("file", len(files))
	if matches == nil {
		return summary
	}
	count := lo.CountBy(files, func(file entities.ScmFile) bool { return matches(file.Status) })
	return fmt.Sprintf("%s, %d %s", summary, count, verb)
}

func (it *Printer) diffStats(stats map[string]entities.LineStat) {
	paths := lo.Keys(stats)
	sort.Strings(paths)
	for _, path := range paths {
		it.printf("%s | +%d -%d\n", path, stats[path].Added, stats[path].Deleted)
	}
}

func (it *Printer) changeLog(changeLog *entities.ChangeLogSet) {
	if changeLog == nil {
		return
	}
	if it.markdownHeading != "" {
		it.printf("%s", changeLog.RenderMarkdown(it.markdownHeading))
		return
	}
	for i := range changeLog.ChangeSets {
		set := &changeLog.ChangeSets[i]
		when := ""
		if !set.Date.IsZero() {
			when = humanize.RelTime(set.Date, it.now(), "ago", "from now")
		}
		it.printf("%-10s %-16s %-14s %s\n", shorten(set.Revision), set.Author, when, Summary(set.Comment))
		for _, file := range set.Files {
			it.printf("    %-10s %s\n", file.Action, file.Name)
		}
	}
	it.printf("%s\n", it.Count("change set", len(changeLog.ChangeSets)))
}

func (it *Printer) blame(lines []entities.BlameLine) {
	for _, line := range lines {
		it.printf("%-10s %-16s %s\n", shorten(line.Revision), line.Author, line.Line)
	}
}

func (it *Printer) info(items []entities.InfoItem) {
	for _, item := range items {
		it.printf("%s\n", item.Path)
		if item.URL != "" {
			it.printf("  url: %s\n", item.URL)
		}
		if item.Revision != "" {
			it.printf("  revision: %s\n", item.Revision)
		}
		if item.LastChangedAuthor != "" {
			it.printf("  last changed: %s by %s\n", item.LastChangedRevision, item.LastChangedAuthor)
		}
	}
}

func (it *Printer) refs(kind string, refs map[string]string) {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		it.printf("%s %s %s\n", kind, name, shorten(refs[name]))
	}
}

// Providers prints the provider listing as a table.
func (it *Printer) Providers(infos []entities.ProviderInfo) {
	for _, info := range infos {
		tool := "embedded"
		if !info.Embedded {
			tool = info.Executable
			if info.Version != "" {
				tool += " " + info.Version
			}
		}
		state := "ok"
		if !info.Supported {
			state = info.Problem
		}
		it.printf("%-10s %-22s %-12s %s\n", info.Type, tool, it.Count("command", len(info.Commands)), state)
	}
}

func (it *Printer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(it.out, format, args...)
}

func shorten(revision string) string {
	if len(revision) > 10 {
		return revision[:10]
	}
	return revision
}
