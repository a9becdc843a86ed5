package cvs

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// updateTable maps the one letter codes of "cvs update".
var updateTable = map[string]entities.ScmFileStatus{
	"U ": entities.StatusUpdated,
	"P ": entities.StatusPatched,
	"A ": entities.StatusAdded,
	"R ": entities.StatusDeleted,
	"M ": entities.StatusModified,
	"C ": entities.StatusConflict,
	"? ": entities.StatusUnknown,
}

// NewUpdateConsumer parses "cvs update" and "cvs -n update" output.
func NewUpdateConsumer() *scmcore.StatusTableConsumer {
	return scmcore.NewStatusTableConsumer(updateTable)
}

// NewCheckOutConsumer parses "U dir/path" lines. The first path component is the checkout
// directory and is stripped.
func NewCheckOutConsumer(status entities.ScmFileStatus) *scmcore.StatusTableConsumer {
	consumer := scmcore.NewStatusTableConsumer(map[string]entities.ScmFileStatus{"U ": status, "P ": status})
	consumer.PathOf = func(rest string) string {
		rest = strings.TrimSpace(rest)
		if _, inner, found := strings.Cut(rest, "/"); found {
			return inner
		}
		return rest
	}
	return consumer
}

// NewTagConsumer parses the "T path" lines of "cvs tag"; "D path" when deleting a tag.
func NewTagConsumer(status entities.ScmFileStatus) *scmcore.StatusTableConsumer {
	return scmcore.NewStatusTableConsumer(map[string]entities.ScmFileStatus{"T ": status, "D ": status})
}

var (
	checkingInPattern  = regexp.MustCompile(`^Checking in (.+);$`)
	rcsArrowPattern    = regexp.MustCompile(`^\S+,v\s+<--\s+(.+)$`)
	newRevisionPattern = regexp.MustCompile(`^(?:new|initial) revision: ([\d.]+)`)
	removedPattern     = regexp.MustCompile(`^Removing (.+);$`)
)

// CheckInConsumer parses "cvs commit", which reports each file as a small block ending in
// "new revision: x.y".
type CheckInConsumer struct {
	current string
	files   []entities.ScmFile
}

func NewCheckInConsumer() *CheckInConsumer {
	return &CheckInConsumer{}
}

func (c *CheckInConsumer) ConsumeLine(line string) {
	switch {
	case checkingInPattern.MatchString(line):
		c.current = checkingInPattern.FindStringSubmatch(line)[1]
	case removedPattern.MatchString(line):
		c.current = removedPattern.FindStringSubmatch(line)[1]
	case rcsArrowPattern.MatchString(line):
		if c.current == "" {
			c.current = strings.TrimSpace(rcsArrowPattern.FindStringSubmatch(line)[1])
		}
	case newRevisionPattern.MatchString(line):
		if c.current != "" {
			revision := newRevisionPattern.FindStringSubmatch(line)[1]
			c.files = append(c.files, entities.NewScmFile(c.current, entities.StatusCheckedIn).WithRevision(revision))
			c.current = ""
		}
	case strings.HasPrefix(line, "done"):
		c.current = ""
	}
}

func (c *CheckInConsumer) Files() []entities.ScmFile {
	return c.files
}

func (c *CheckInConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
	if len(c.files) == 1 {
		result.Revision = c.files[0].Revision
	}
}

var (
	workingFilePattern = regexp.MustCompile(`^Working file: (.+)$`)
	rcsFilePattern     = regexp.MustCompile(`^RCS file: (.+),v$`)
	revisionPattern    = regexp.MustCompile(`^revision ([\d.]+)`)
	dateAuthorPattern  = regexp.MustCompile(`^date: ([^;]+);\s+author: ([^;]+);(?:\s+state: ([^;]+);)?`)
)

const (
	revisionSeparator = "----------------------------"
	fileSeparator     = "============================================================================="
)

type logState int

const (
	logFileHeader logState = iota
	logRevision
	logDate
	logComment
)

// ChangeLogConsumer parses "cvs log". Every file revision becomes one change set; commits
// spanning several files are folded afterwards.
type ChangeLogConsumer struct {
	request *entities.CommandRequest
	state   logState
	file    string
	current *entities.ChangeSet
	comment []string
	sets    []entities.ChangeSet
}

func NewChangeLogConsumer(request *entities.CommandRequest) *ChangeLogConsumer {
	return &ChangeLogConsumer{request: request}
}

func (c *ChangeLogConsumer) ConsumeLine(line string) {
	switch c.state {
	case logFileHeader:
		if m := workingFilePattern.FindStringSubmatch(line); m != nil {
			c.file = m[1]
		} else if m := rcsFilePattern.FindStringSubmatch(line); m != nil && c.file == "" {
			c.file = m[1]
		} else if line == revisionSeparator {
			c.state = logRevision
		}
	case logRevision:
		if m := revisionPattern.FindStringSubmatch(line); m != nil {
			c.current = &entities.ChangeSet{Revision: m[1]}
			c.state = logDate
		}
	case logDate:
		if m := dateAuthorPattern.FindStringSubmatch(line); m != nil {
			c.current.Date, _ = scmcore.ParseDate(m[1], "2006/01/02 15:04:05", "2006-01-02 15:04:05 -0700", "2006-01-02 15:04:05")
			c.current.Author = strings.TrimSpace(m[2])
			action := entities.StatusModified
			if strings.TrimSpace(m[3]) == "dead" {
				action = entities.StatusDeleted
			}
			c.current.Files = []entities.ChangeFile{{
				Name:             c.file,
				Revision:         c.current.Revision,
				PreviousRevision: previousRevision(c.current.Revision),
				Action:           action,
			}}
			c.state = logComment
		}
	case logComment:
		switch {
		case line == revisionSeparator:
			c.flush()
			c.state = logRevision
		case line == fileSeparator:
			c.flush()
			c.file = ""
			c.state = logFileHeader
		case strings.HasPrefix(line, "branches: ") && len(c.comment) == 0:
		default:
			c.comment = append(c.comment, line)
		}
	}
}

// previousRevision returns "1.1" for "1.2" and "" for "1.1".
func previousRevision(revision string) string {
	dot := strings.LastIndex(revision, ".")
	if dot < 0 {
		return ""
	}
	minor, err := strconv.Atoi(revision[dot+1:])
	if err != nil || minor <= 1 {
		return ""
	}
	return revision[:dot+1] + strconv.Itoa(minor-1)
}

func (c *ChangeLogConsumer) flush() {
	if c.current == nil {
		return
	}
	c.current.Comment = strings.TrimSpace(strings.Join(c.comment, "\n"))
	if c.current.Files[0].Revision == "1.1" {
		c.current.Files[0].Action = entities.StatusAdded
	}
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

var annotatePattern = regexp.MustCompile(`^([\d.]+)\s+\((\S+)\s+(\d{2}-\w{3}-\d{2})\): ?(.*)$`)

// NewBlameConsumer parses "cvs annotate" lines: "1.1 (user 12-Jun-09): content".
func NewBlameConsumer() *scmcore.LineFunc {
	var lines []entities.BlameLine
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			m := annotatePattern.FindStringSubmatch(line)
			if m == nil {
				scmcore.Unparsed("cvs annotate", line)
				return
			}
			date, _ := scmcore.ParseDate(m[3], "02-Jan-06")
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

// NewListConsumer parses "cvs rls -R": "dir:" headers followed by entries.
func NewListConsumer() *scmcore.LineFunc {
	var (
		dir   string
		files []entities.ScmFile
	)
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case strings.HasSuffix(line, ":"):
				dir = strings.TrimSuffix(line, ":")
			default:
				path := line
				if dir != "" && dir != "." {
					path = dir + "/" + line
				}
				files = append(files, entities.NewScmFile(path, entities.StatusCheckedIn))
			}
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}
