package bazaar

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// sections maps the headings of "bzr status" and "bzr log -v" to a file status.
var sections = map[string]entities.ScmFileStatus{
	"added:":        entities.StatusAdded,
	"removed:":      entities.StatusDeleted,
	"modified:":     entities.StatusModified,
	"renamed:":      entities.StatusRenamed,
	"unknown:":      entities.StatusUnknown,
	"conflicts:":    entities.StatusConflict,
	"missing:":      entities.StatusMissing,
	"kind changed:": entities.StatusModified,
}

// sectionPath extracts the path of an indented entry; renames keep the new name.
func sectionPath(line string) (path, original string) {
	entry := strings.TrimSpace(line)
	// "kind changed" entries carry the change in parentheses
	if i := strings.Index(entry, " ("); i > 0 && strings.HasSuffix(entry, ")") {
		entry = entry[:i]
	}
	if before, after, found := strings.Cut(entry, " => "); found {
		return strings.TrimSuffix(after, "*"), before
	}
	return strings.TrimSuffix(strings.TrimSuffix(entry, "*"), "@"), ""
}

// StatusConsumer parses the section layout of "bzr status".
type StatusConsumer struct {
	section entities.ScmFileStatus
	files   []entities.ScmFile
}

func NewStatusConsumer() *StatusConsumer {
	return &StatusConsumer{}
}

func (c *StatusConsumer) ConsumeLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if !strings.HasPrefix(line, " ") {
		status, ok := sections[strings.TrimSpace(line)]
		if !ok {
			scmcore.Unparsed("bazaar status", line)
		}
		c.section = status
		return
	}
	if c.section == "" {
		return
	}
	path, original := sectionPath(line)
	file := entities.NewScmFile(path, c.section)
	file.OriginalPath = original
	c.files = append(c.files, file)
}

func (c *StatusConsumer) Files() []entities.ScmFile {
	return c.files
}

func (c *StatusConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

// NewAddConsumer reads "adding x" lines.
func NewAddConsumer() *scmcore.StatusTableConsumer {
	return scmcore.NewStatusTableConsumer(map[string]entities.ScmFileStatus{"adding ": entities.StatusAdded})
}

// NewRemoveConsumer reads "deleted x" and "removed x" lines, printed on stderr.
func NewRemoveConsumer() *scmcore.StatusTableConsumer {
	return scmcore.NewStatusTableConsumer(map[string]entities.ScmFileStatus{
		"deleted ": entities.StatusDeleted,
		"removed ": entities.StatusDeleted,
	})
}

var committedPattern = regexp.MustCompile(`^Committed revision (\d+)\.`)

// NewCheckInConsumer parses the stderr report of "bzr commit".
func NewCheckInConsumer() *scmcore.LineFunc {
	table := scmcore.NewStatusTableConsumer(map[string]entities.ScmFileStatus{
		"added ":    entities.StatusCheckedIn,
		"modified ": entities.StatusCheckedIn,
		"deleted ":  entities.StatusCheckedIn,
		"renamed ":  entities.StatusCheckedIn,
	})
	table.PathOf = func(rest string) string {
		path, _ := sectionPath(rest)
		return path
	}
	revision := scmcore.NewRevisionConsumer(committedPattern)
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if strings.HasPrefix(line, "Committing to:") {
				return
			}
			if committedPattern.MatchString(line) {
				revision.ConsumeLine(line)
				return
			}
			table.ConsumeLine(line)
		},
		OnApply: func(result *entities.ScmResult) {
			table.Apply(result)
			revision.Apply(result)
		},
	}
}

// NewUpdateConsumer parses the verbose report of "bzr pull" and "bzr update".
func NewUpdateConsumer(status entities.ScmFileStatus) *scmcore.StatusTableConsumer {
	consumer := scmcore.NewStatusTableConsumer(map[string]entities.ScmFileStatus{
		"+N ": entities.StatusAdded,
		"-D ": entities.StatusDeleted,
		" M ": status,
		"M  ": status,
		"R  ": entities.StatusRenamed,
		"RM ": entities.StatusRenamed,
		" K ": status,
		"C  ": entities.StatusConflict,
	})
	consumer.PathOf = func(rest string) string {
		path, _ := sectionPath(rest)
		return path
	}
	consumer.Ignore = func(line string) bool {
		return strings.HasPrefix(line, "All changes applied") || strings.HasPrefix(line, "Now on revision")
	}
	return consumer
}

var (
	logSeparatorPattern = regexp.MustCompile(`^\s*-{20,}$`)
	logFieldPattern     = regexp.MustCompile(`^\s*(revno|committer|author|timestamp|branch nick|tags):\s*(.*)$`)
)

const bzrDateLayout = "Mon 2006-01-02 15:04:05 -0700"

// ChangeLogConsumer parses "bzr log -v".
type ChangeLogConsumer struct {
	request   *entities.CommandRequest
	current   *entities.ChangeSet
	inMessage bool
	section   entities.ScmFileStatus
	comment   []string
	sets      []entities.ChangeSet
}

func NewChangeLogConsumer(request *entities.CommandRequest) *ChangeLogConsumer {
	return &ChangeLogConsumer{request: request}
}

func (c *ChangeLogConsumer) ConsumeLine(line string) {
	if logSeparatorPattern.MatchString(line) {
		c.flush()
		c.current = &entities.ChangeSet{}
		return
	}
	if c.current == nil {
		return
	}
	trimmed := strings.TrimSpace(line)
	if m := logFieldPattern.FindStringSubmatch(line); m != nil && !c.inMessage {
		switch m[1] {
		case "revno":
			c.current.Revision, _, _ = strings.Cut(m[2], " ")
		case "committer":
			if c.current.Author == "" {
				c.current.Author = m[2]
			}
		case "author":
			c.current.Author = m[2]
		case "timestamp":
			c.current.Date, _ = scmcore.ParseDate(m[2], bzrDateLayout)
		}
		return
	}
	if trimmed == "message:" {
		c.inMessage = true
		return
	}
	if status, ok := sections[trimmed]; ok {
		c.inMessage = false
		c.section = status
		return
	}
	if c.inMessage {
		c.comment = append(c.comment, trimmed)
		return
	}
	if c.section != "" && trimmed != "" {
		path, _ := sectionPath(trimmed)
		c.current.Files = append(c.current.Files, entities.ChangeFile{
			Name:     path,
			Revision: c.current.Revision,
			Action:   c.section,
		})
	}
}

func (c *ChangeLogConsumer) flush() {
	if c.current == nil || c.current.Revision == "" {
		c.current = nil
		c.comment = nil
		return
	}
	c.current.Comment = strings.TrimSpace(strings.Join(c.comment, "\n"))
	c.sets = append(c.sets, *c.current)
	c.current = nil
	c.comment = nil
	c.inMessage = false
	c.section = ""
}

func (c *ChangeLogConsumer) ChangeSets() []entities.ChangeSet {
	c.flush()
	return c.sets
}

func (c *ChangeLogConsumer) Apply(result *entities.ScmResult) {
	result.ChangeLog = scmcore.BuildChangeLog(c.request, c.ChangeSets(), false)
}

var annotatePattern = regexp.MustCompile(`^([\d.]+)\s+(\S+)\s+(\d{8})\s+\|\s?(.*)$`)

// NewBlameConsumer parses "bzr annotate --all --long".
func NewBlameConsumer() *scmcore.LineFunc {
	var lines []entities.BlameLine
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			m := annotatePattern.FindStringSubmatch(line)
			if m == nil {
				scmcore.Unparsed("bzr annotate", line)
				return
			}
			date, _ := scmcore.ParseDate(m[3], "20060102")
			lines = append(lines, entities.BlameLine{
				Revision:   m[1],
				Author:     m[2],
				Date:       date,
				LineNumber: len(lines) + 1,
				Line:       m[4],
			})
		},
		OnApply: func(result *entities.ScmResult) { result.Blame = append(result.Blame, lines...) },
	}
}

// NewListConsumer reads "bzr ls"; directories are printed with a trailing slash and skipped.
func NewListConsumer(status entities.ScmFileStatus) *scmcore.LineFunc {
	return scmcore.ListConsumer(status, func(line string) string {
		path := strings.TrimSpace(line)
		if strings.HasSuffix(path, "/") {
			return ""
		}
		return path
	})
}

var revnoPattern = regexp.MustCompile(`^(\d+)$`)

func NewRevnoConsumer() *scmcore.RevisionConsumer {
	return scmcore.NewRevisionConsumer(revnoPattern)
}
