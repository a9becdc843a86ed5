package clearcase

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

const clearcaseDateLayout = "20060102.150405"

// QuotedConsumer reports the quoted path of every line matching pattern, e.g.
// `Loading "src/a.txt" (12 bytes).`. A second capture group is taken as the revision.
type QuotedConsumer struct {
	baseDir string
	pattern *regexp.Regexp
	status  entities.ScmFileStatus
	files   []entities.ScmFile
}

func NewQuotedConsumer(baseDir string, pattern *regexp.Regexp, status entities.ScmFileStatus) *QuotedConsumer {
	return &QuotedConsumer{baseDir: baseDir, pattern: pattern, status: status}
}

func (c *QuotedConsumer) ConsumeLine(line string) {
	m := c.pattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	file := entities.NewScmFile(scmcore.Relativize(c.baseDir, m[1]), c.status)
	if len(m) > 2 {
		file = file.WithRevision(m[2])
	}
	c.files = append(c.files, file)
}

func (c *QuotedConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

var (
	LoadingPattern    = regexp.MustCompile(`^Loading "(.+?)"`)
	CheckedInPattern  = regexp.MustCompile(`^Checked in "(.+?)" version "(.+?)"\.`)
	CheckedOutPattern = regexp.MustCompile(`^Checked out "(.+?)" from version "(.+?)"\.`)
	CancelledPattern  = regexp.MustCompile(`^Checkout cancelled for "(.+?)"\.`)
	CreatedPattern    = regexp.MustCompile(`^Created element "(.+?)"`)
	RemovedPattern    = regexp.MustCompile(`^Removed "(.+?)"\.`)
	LabelPattern      = regexp.MustCompile(`^Created label "[^"]+" on "(.+?)" version "(.+?)"\.`)
)

// history is the lshistory format: one field per line, the comment last.
const historyFormat = `NAME:%En\nDATE:%Nd\nREVI:%Vn\nUSER:%u\nCOMM:%Nc\n`

// ChangeLogConsumer parses lshistory output in historyFormat. Each record is one element
// version; records of one commit are folded afterwards.
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
	switch {
	case strings.HasPrefix(line, "NAME:"):
		c.flush()
		c.current = &entities.ChangeSet{Files: []entities.ChangeFile{{
			Name:   scmcore.Relativize(c.request.BaseDir(), strings.TrimPrefix(line, "NAME:")),
			Action: entities.StatusModified,
		}}}
	case c.current == nil:
	case strings.HasPrefix(line, "DATE:"):
		c.current.Date, _ = scmcore.ParseDate(strings.TrimPrefix(line, "DATE:"), clearcaseDateLayout)
	case strings.HasPrefix(line, "REVI:"):
		c.current.Revision = strings.TrimPrefix(line, "REVI:")
		c.current.Files[0].Revision = c.current.Revision
	case strings.HasPrefix(line, "USER:"):
		c.current.Author = strings.TrimPrefix(line, "USER:")
	case strings.HasPrefix(line, "COMM:"):
		c.comment = append(c.comment, strings.TrimPrefix(line, "COMM:"))
	default:
		c.comment = append(c.comment, line)
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
}

func (c *ChangeLogConsumer) ChangeSets() []entities.ChangeSet {
	c.flush()
	return c.sets
}

func (c *ChangeLogConsumer) Apply(result *entities.ScmResult) {
	result.ChangeLog = scmcore.BuildChangeLog(c.request, c.ChangeSets(), true)
}

const annotateFormat = `VERSION:%Ln@@@USER:%u@@@DATE:%Nd@@@`

var annotatePattern = regexp.MustCompile(`^VERSION:(.*?)@@@USER:(.*?)@@@DATE:(.*?)@@@(.*)$`)

// NewBlameConsumer parses annotate output where every line carries annotateFormat.
func NewBlameConsumer() *scmcore.LineFunc {
	var lines []entities.BlameLine
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			m := annotatePattern.FindStringSubmatch(line)
			if m == nil {
				scmcore.Unparsed("cleartool annotate", line)
				return
			}
			date, _ := scmcore.ParseDate(m[3], clearcaseDateLayout)
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
