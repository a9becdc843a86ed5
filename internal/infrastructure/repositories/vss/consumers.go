package vss

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

var projectHeaderPattern = regexp.MustCompile(`^(\$/.*):$`)

// projectTracker follows the "$/project/sub:" headers printed by recursive commands.
type projectTracker struct {
	project string
	current string
}

func (t *projectTracker) consume(line string) bool {
	m := projectHeaderPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return false
	}
	t.current = m[1]
	return true
}

func (t *projectTracker) path(name string) string {
	dir := strings.TrimPrefix(strings.TrimPrefix(t.current, t.project), "/")
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// GetConsumer parses "ss Get": "Getting a.txt" and "Replacing local copy of a.txt".
type GetConsumer struct {
	projects projectTracker
	status   entities.ScmFileStatus
	files    []entities.ScmFile
}

func NewGetConsumer(project string, status entities.ScmFileStatus) *GetConsumer {
	return &GetConsumer{projects: projectTracker{project: project, current: project}, status: status}
}

func (c *GetConsumer) ConsumeLine(line string) {
	if c.projects.consume(line) {
		return
	}
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "Getting "):
		c.files = append(c.files, entities.NewScmFile(c.projects.path(strings.TrimPrefix(line, "Getting ")), c.status))
	case strings.HasPrefix(line, "Replacing local copy of "):
		c.files = append(c.files, entities.NewScmFile(c.projects.path(strings.TrimPrefix(line, "Replacing local copy of ")), entities.StatusUpdated))
	}
}

func (c *GetConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

// diffSections maps the section headings of "ss Diff".
var diffSections = map[string]entities.ScmFileStatus{
	"Local files not in the current project:":      entities.StatusUnknown,
	"SourceSafe files not in the current folder:":  entities.StatusMissing,
	"SourceSafe files different from local files:": entities.StatusModified,
}

// StatusConsumer parses the section layout of "ss Diff".
type StatusConsumer struct {
	projects projectTracker
	section  entities.ScmFileStatus
	files    []entities.ScmFile
}

func NewStatusConsumer(project string) *StatusConsumer {
	return &StatusConsumer{projects: projectTracker{project: project, current: project}}
}

func (c *StatusConsumer) ConsumeLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	if status, ok := diffSections[trimmed]; ok {
		c.section = status
		return
	}
	if strings.HasPrefix(trimmed, "Diffing: ") {
		item := strings.TrimPrefix(trimmed, "Diffing: ")
		c.files = append(c.files, entities.NewScmFile(scmcore.StripPrefix(c.projects.project, item), entities.StatusModified))
		c.section = ""
		return
	}
	if c.projects.consume(line) {
		c.section = ""
		return
	}
	if c.section == "" || !strings.HasPrefix(line, " ") {
		return
	}
	for _, name := range strings.Fields(trimmed) {
		c.files = append(c.files, entities.NewScmFile(c.projects.path(name), c.section))
	}
}

func (c *StatusConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

var (
	fileHeaderPattern    = regexp.MustCompile(`^\*{5}\s+(.+?)\s+\*{5}$`)
	versionHeaderPattern = regexp.MustCompile(`^\*{5,}\s+Version (\d+)\s+\*{5,}$`)
	versionPattern       = regexp.MustCompile(`^Version (\d+)$`)
	userDatePattern      = regexp.MustCompile(`^User: (.+?)\s+Date:\s+(\S+)\s+Time:\s+(\S+)$`)
)

type historyState int

const (
	historyHeader historyState = iota
	historyBody
	historyComment
)

// ChangeLogConsumer parses "ss History".
type ChangeLogConsumer struct {
	request *entities.CommandRequest
	project string
	state   historyState
	file    string
	current *entities.ChangeSet
	comment []string
	sets    []entities.ChangeSet
}

func NewChangeLogConsumer(request *entities.CommandRequest) *ChangeLogConsumer {
	return &ChangeLogConsumer{request: request, project: Of(request).Project}
}

func (c *ChangeLogConsumer) ConsumeLine(line string) {
	switch {
	case versionHeaderPattern.MatchString(line):
		c.start(versionHeaderPattern.FindStringSubmatch(line)[1])
		return
	case fileHeaderPattern.MatchString(line):
		c.flush()
		c.file = fileHeaderPattern.FindStringSubmatch(line)[1]
		c.state = historyHeader
		return
	}

	switch c.state {
	case historyHeader:
		if m := versionPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			c.start(m[1])
		}
	case historyBody:
		if m := userDatePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			c.current.Author = m[1]
			c.current.Date, _ = scmcore.ParseDate(m[2]+" "+m[3]+"m", "1/2/06 3:04pm", "1/2/2006 3:04pm")
		} else if comment, found := strings.CutPrefix(line, "Comment: "); found {
			c.comment = append(c.comment, comment)
			c.state = historyComment
		} else if item, found := strings.CutPrefix(line, "Checked in "); found && c.file == "" {
			c.current.Files = []entities.ChangeFile{{Name: scmcore.StripPrefix(c.project, strings.TrimSpace(item)), Revision: c.current.Revision, Action: entities.StatusModified}}
		}
	case historyComment:
		c.comment = append(c.comment, line)
	}
}

func (c *ChangeLogConsumer) start(revision string) {
	c.flush()
	c.current = &entities.ChangeSet{Revision: revision}
	if c.file != "" {
		c.current.Files = []entities.ChangeFile{{Name: c.file, Revision: revision, Action: entities.StatusModified}}
	}
	c.state = historyBody
}

func (c *ChangeLogConsumer) flush() {
	if c.current == nil {
		return
	}
	c.current.Comment = strings.TrimSpace(strings.Join(c.comment, "\n"))
	c.sets = append(c.sets, *c.current)
	c.current = nil
	c.comment = nil
}

func (c *ChangeLogConsumer) ChangeSets() []entities.ChangeSet {
	c.flush()
	return c.sets
}

func (c *ChangeLogConsumer) Apply(result *entities.ScmResult) {
	result.ChangeLog = scmcore.BuildChangeLog(c.request, c.ChangeSets(), true)
}
