package integrity

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// fieldsDelimiter separates the --fields and --format columns requested from si.
const fieldsDelimiter = "\t"

var (
	CheckedInPattern  = regexp.MustCompile(`^(.+?): checked in revision ([\d.]+)`)
	ResyncPattern     = regexp.MustCompile(`^(.+?): (?:resynchronized|restored|updated)(?: to revision ([\d.]+))?`)
	CheckedOutPattern = regexp.MustCompile(`^(.+?): checked out revision ([\d.]+)`)
	checkpointPattern = regexp.MustCompile(`(?i)checkpointed .*?revision ([\d.]+)`)
)

// MemberConsumer reports the members named by the lines matching Pattern; an optional
// second group is the member revision.
type MemberConsumer struct {
	baseDir string
	pattern *regexp.Regexp
	status  entities.ScmFileStatus
	files   []entities.ScmFile
}

func NewMemberConsumer(baseDir string, pattern *regexp.Regexp, status entities.ScmFileStatus) *MemberConsumer {
	return &MemberConsumer{baseDir: baseDir, pattern: pattern, status: status}
}

func (c *MemberConsumer) ConsumeLine(line string) {
	m := c.pattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return
	}
	file := entities.NewScmFile(scmcore.Relativize(c.baseDir, m[1]), c.status)
	if len(m) > 2 && m[2] != "" {
		file = file.WithRevision(m[2])
	}
	c.files = append(c.files, file)
}

func (c *MemberConsumer) Files() []entities.ScmFile {
	return c.files
}

func (c *MemberConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
	if len(c.files) == 1 {
		result.Revision = c.files[0].Revision
	}
}

// wfdelta is the working file delta column of "si viewsandbox".
var wfdelta = map[string]entities.ScmFileStatus{
	"Added":                entities.StatusAdded,
	"Dropped":              entities.StatusDeleted,
	"Moved":                entities.StatusRenamed,
	"Renamed":              entities.StatusRenamed,
	"No working file":      entities.StatusMissing,
	"Working file missing": entities.StatusMissing,
	"Working file":         entities.StatusModified,
	"Out of sync":          entities.StatusPatched,
	"Locked":               entities.StatusLocked,
}

// NewStatusConsumer parses "si viewsandbox --fields=wfdelta,name" rows.
func NewStatusConsumer(baseDir string) *scmcore.StatusTableConsumer {
	consumer := scmcore.NewStatusTableConsumer(wfdelta)
	consumer.PathOf = func(rest string) string {
		if _, name, found := strings.Cut(rest, fieldsDelimiter); found {
			return strings.TrimSpace(name)
		}
		return ""
	}
	consumer.Relativize = func(path string) string { return scmcore.Relativize(baseDir, path) }
	return consumer
}

// NewSandboxConsumer lists the members of "si viewsandbox --fields=name,type".
func NewSandboxConsumer(baseDir string, status entities.ScmFileStatus) *scmcore.LineFunc {
	return scmcore.ListConsumer(status, func(line string) string {
		name, kind, found := strings.Cut(line, fieldsDelimiter)
		if !found {
			scmcore.Unparsed("si viewsandbox", line)
			return ""
		}
		if strings.TrimSpace(kind) != "member" {
			return ""
		}
		return scmcore.Relativize(baseDir, name)
	})
}

// NewCheckpointConsumer reports the checkpoint of "si checkpoint" as the tag.
func NewCheckpointConsumer(request *entities.CommandRequest) *scmcore.LineFunc {
	revision := ""
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if m := checkpointPattern.FindStringSubmatch(line); m != nil {
				revision = m[1]
			}
		},
		OnApply: func(result *entities.ScmResult) {
			result.AddTag(request.Parameters.Name, revision)
			result.Revision = revision
		},
	}
}

// rlogLayout is the date rendering of the {date} rlog field.
const rlogLayout = "Jan 2, 2006 3:04:05 PM"

// RlogFormat renders one revision per line; descriptions may continue on the following lines.
var RlogFormat = strings.Join([]string{"{membername}", "{revision}", "{author}", "{date}", "{description}"}, fieldsDelimiter) + "\n"

// ChangeLogConsumer parses "si rlog --format=RlogFormat".
type ChangeLogConsumer struct {
	request *entities.CommandRequest
	current *entities.ChangeSet
	comment []string
	sets    []entities.ChangeSet
}

func NewChangeLogConsumer(request *entities.CommandRequest) *ChangeLogConsumer {
	return &ChangeLogConsumer{request: request}
}

func (c *ChangeLogConsumer) ConsumeLine(line string) {
	fields := strings.SplitN(line, fieldsDelimiter, 5)
	if len(fields) < 5 {
		if c.current != nil {
			c.comment = append(c.comment, line)
		}
		return
	}
	c.flush()
	date, _ := scmcore.ParseDate(fields[3], rlogLayout)
	c.current = &entities.ChangeSet{
		Date:     date,
		Author:   strings.TrimSpace(fields[2]),
		Revision: fields[1],
		Files: []entities.ChangeFile{{
			Name:     strings.TrimSpace(fields[0]),
			Revision: fields[1],
			Action:   entities.StatusModified,
		}},
	}
	c.comment = []string{fields[4]}
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

// NewPatchConsumer keeps the whole "si diff" output as the patch.
func NewPatchConsumer() *scmcore.LineFunc {
	collector := &scmcore.LineCollector{}
	return &scmcore.LineFunc{
		OnLine:  collector.ConsumeLine,
		OnApply: func(result *entities.ScmResult) { result.Patch = collector.Text() },
	}
}
