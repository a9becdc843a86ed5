package scmcore

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// LineCollector keeps every line. It contributes nothing to the result.
type LineCollector struct {
	Lines []string
}

func (c *LineCollector) ConsumeLine(line string) {
	c.Lines = append(c.Lines, line)
}

func (c *LineCollector) Apply(*entities.ScmResult) {}

func (c *LineCollector) Text() string {
	return strings.Join(c.Lines, "\n")
}

// ContainsAny reports whether any collected line contains one of the fragments.
func (c *LineCollector) ContainsAny(fragments ...string) bool {
	if len(fragments) == 0 {
		return false
	}
	return ContainsAnyFold(c.Text(), fragments...)
}

type teeConsumer []repositories.OutputConsumer

func (t teeConsumer) ConsumeLine(line string) {
	for _, c := range t {
		c.ConsumeLine(line)
	}
}

// Tee fans every line out to all consumers.
func Tee(consumers ...repositories.OutputConsumer) repositories.OutputConsumer {
	return teeConsumer(consumers)
}

// Unparsed warns about an output line no rule recognized. Blank lines are skipped.
func Unparsed(source, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	logger.Warnf("Unparseable %s line: %q", source, line)
}

// StatusTableConsumer maps a line prefix to a file status. The longest matching prefix wins;
// the remainder of the line, trimmed, is the path unless PathOf says otherwise.
type StatusTableConsumer struct {
	prefixes []string
	table    map[string]entities.ScmFileStatus

	// PathOf extracts the path from the part of the line after the prefix.
	PathOf func(rest string) string
	// Relativize maps the extracted path to a base dir relative one.
	Relativize func(path string) string
	// Ignore drops lines before prefix matching.
	Ignore func(line string) bool

	files []entities.ScmFile
}

// NewStatusTableConsumer builds a consumer over a prefix table.
func NewStatusTableConsumer(table map[string]entities.ScmFileStatus) *StatusTableConsumer {
	prefixes := lo.Keys(table)
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})
	return &StatusTableConsumer{prefixes: prefixes, table: table}
}

func (c *StatusTableConsumer) ConsumeLine(line string) {
	if strings.TrimSpace(line) == "" || (c.Ignore != nil && c.Ignore(line)) {
		return
	}
	for _, prefix := range c.prefixes {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		rest := line[len(prefix):]
		path := strings.TrimSpace(rest)
		if c.PathOf != nil {
			path = c.PathOf(rest)
		}
		if path == "" {
			return
		}
		if c.Relativize != nil {
			path = c.Relativize(path)
		}
		c.files = append(c.files, entities.NewScmFile(path, c.table[prefix]))
		return
	}
	Unparsed("status", line)
}

func (c *StatusTableConsumer) Files() []entities.ScmFile {
	return c.files
}

func (c *StatusTableConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

// FixedFilesConsumer reports the requested files with one status once the tool succeeded.
// It is used for tools whose output does not list the files.
type FixedFilesConsumer struct {
	LineCollector
	Files  []string
	Status entities.ScmFileStatus
}

func NewFixedFilesConsumer(files []string, status entities.ScmFileStatus) *FixedFilesConsumer {
	return &FixedFilesConsumer{Files: files, Status: status}
}

func (c *FixedFilesConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(lo.Map(c.Files, func(f string, _ int) entities.ScmFile {
		return entities.NewScmFile(f, c.Status)
	})...)
}

// RevisionConsumer stores the first capture group of the last matching line as the revision.
type RevisionConsumer struct {
	Pattern  *regexp.Regexp
	revision string
}

func NewRevisionConsumer(pattern *regexp.Regexp) *RevisionConsumer {
	return &RevisionConsumer{Pattern: pattern}
}

func (c *RevisionConsumer) ConsumeLine(line string) {
	if m := c.Pattern.FindStringSubmatch(line); len(m) > 1 {
		c.revision = m[1]
	}
}

func (c *RevisionConsumer) Revision() string {
	return c.revision
}

func (c *RevisionConsumer) Apply(result *entities.ScmResult) {
	if c.revision != "" {
		result.Revision = c.revision
	}
}

// LineFunc turns a per-line callback plus an apply callback into a ResultConsumer.
type LineFunc struct {
	OnLine  func(line string)
	OnApply func(result *entities.ScmResult)
}

func (f *LineFunc) ConsumeLine(line string) {
	if f.OnLine != nil {
		f.OnLine(line)
	}
}

func (f *LineFunc) Apply(result *entities.ScmResult) {
	if f.OnApply != nil {
		f.OnApply(result)
	}
}

// ListConsumer reports each non blank line as a file with the given status.
func ListConsumer(status entities.ScmFileStatus, pathOf func(line string) string) *LineFunc {
	var files []entities.ScmFile
	return &LineFunc{
		OnLine: func(line string) {
			path := strings.TrimSpace(line)
			if pathOf != nil {
				path = pathOf(line)
			}
			if path != "" {
				files = append(files, entities.NewScmFile(path, status))
			}
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}
