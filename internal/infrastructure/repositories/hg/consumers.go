package hg

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

const hgDateLayout = "Mon Jan 02 15:04:05 2006 -0700"

// statusTable maps the one letter codes of "hg status". Clean and ignored files are skipped.
var statusTable = map[string]entities.ScmFileStatus{
	"M ": entities.StatusModified,
	"A ": entities.StatusAdded,
	"R ": entities.StatusDeleted,
	"! ": entities.StatusMissing,
	"? ": entities.StatusUnknown,
}

// updateTable reads "hg status --rev <before>" after an update.
var updateTable = map[string]entities.ScmFileStatus{
	"M ": entities.StatusUpdated,
	"A ": entities.StatusAdded,
	"R ": entities.StatusDeleted,
}

func NewStatusConsumer() *scmcore.StatusTableConsumer {
	return scmcore.NewStatusTableConsumer(statusTable)
}

func NewUpdateConsumer() *scmcore.StatusTableConsumer {
	return scmcore.NewStatusTableConsumer(updateTable)
}

// NewVerboseConsumer reads the "adding x" and "removing x" lines of add and remove --verbose.
func NewVerboseConsumer() *scmcore.StatusTableConsumer {
	return scmcore.NewStatusTableConsumer(map[string]entities.ScmFileStatus{
		"adding ":   entities.StatusAdded,
		"removing ": entities.StatusDeleted,
	})
}

var (
	changesetPattern = regexp.MustCompile(`^changeset:\s+(\d+):([0-9a-f]+)$`)
	fieldPattern     = regexp.MustCompile(`^(\w+):\s+(.*)$`)
)

// ChangeLogConsumer parses "hg log --verbose". Entries start with "changeset:", the
// description runs until the next "changeset:" line.
type ChangeLogConsumer struct {
	request       *entities.CommandRequest
	current       *entities.ChangeSet
	inDescription bool
	comment       []string
	sets          []entities.ChangeSet
}

func NewChangeLogConsumer(request *entities.CommandRequest) *ChangeLogConsumer {
	return &ChangeLogConsumer{request: request}
}

func (c *ChangeLogConsumer) ConsumeLine(line string) {
	if m := changesetPattern.FindStringSubmatch(line); m != nil {
		c.flush()
		c.current = &entities.ChangeSet{Revision: m[2]}
		return
	}
	if c.current == nil {
		return
	}
	if c.inDescription {
		c.comment = append(c.comment, line)
		return
	}
	if line == "description:" {
		c.inDescription = true
		return
	}

	m := fieldPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	switch m[1] {
	case "user":
		c.current.Author = m[2]
	case "date":
		c.current.Date, _ = scmcore.ParseDate(m[2], hgDateLayout)
	case "files":
		for _, name := range strings.Fields(m[2]) {
			c.current.Files = append(c.current.Files, entities.ChangeFile{
				Name:     name,
				Revision: c.current.Revision,
				Action:   entities.StatusModified,
			})
		}
	}
}

func (c *ChangeLogConsumer) flush() {
	if c.current == nil {
		return
	}
	c.current.Comment = strings.TrimSpace(strings.Join(c.comment, "\n"))
	c.sets = append(c.sets, *c.current)
	c.current = nil
	c.comment = nil
	c.inDescription = false
}

func (c *ChangeLogConsumer) ChangeSets() []entities.ChangeSet {
	c.flush()
	return c.sets
}

func (c *ChangeLogConsumer) Apply(result *entities.ScmResult) {
	result.ChangeLog = scmcore.BuildChangeLog(c.request, c.ChangeSets(), false)
}

var annotatePattern = regexp.MustCompile(
	`^\s*(\S+)\s+(\d+)\s+([0-9a-f]+)\s+(\w{3} \w{3} \d{2} \d{2}:\d{2}:\d{2} \d{4} [+-]\d{4}): ?(.*)$`,
)

// NewBlameConsumer parses "hg annotate --user --number --changeset --date".
func NewBlameConsumer() *scmcore.LineFunc {
	var lines []entities.BlameLine
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			m := annotatePattern.FindStringSubmatch(line)
			if m == nil {
				scmcore.Unparsed("hg annotate", line)
				return
			}
			date, _ := scmcore.ParseDate(m[4], hgDateLayout)
			lines = append(lines, entities.BlameLine{
				Revision:   m[3],
				Author:     m[1],
				Date:       date,
				LineNumber: len(lines) + 1,
				Line:       m[5],
			})
		},
		OnApply: func(result *entities.ScmResult) { result.Blame = append(result.Blame, lines...) },
	}
}

var nodePattern = regexp.MustCompile(`^([0-9a-f]{12,40})\+?`)

// NewNodeConsumer stores the changeset id printed by "hg id -i" or a "{node}" template.
func NewNodeConsumer() *scmcore.RevisionConsumer {
	return scmcore.NewRevisionConsumer(nodePattern)
}
