package svn

import (
	"encoding/xml"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// statusColumn maps the first column of "svn status".
var statusColumn = map[byte]entities.ScmFileStatus{
	'A': entities.StatusAdded,
	'R': entities.StatusAdded,
	'C': entities.StatusConflict,
	'D': entities.StatusDeleted,
	'M': entities.StatusModified,
	'?': entities.StatusUnknown,
	'!': entities.StatusMissing,
	'X': entities.StatusExternal,
	'~': entities.StatusConflict,
}

// StatusConsumer parses "svn status". The path starts after the seven status columns.
type StatusConsumer struct {
	baseDir string
	files   []entities.ScmFile
}

func NewStatusConsumer(baseDir string) *StatusConsumer {
	return &StatusConsumer{baseDir: baseDir}
}

func (c *StatusConsumer) ConsumeLine(line string) {
	const pathColumn = 7
	if len(line) <= pathColumn || strings.HasPrefix(line, "Performing status on external") {
		return
	}

	status, ok := statusColumn[line[0]]
	if !ok && line[0] == ' ' && line[1] == 'M' {
		status, ok = entities.StatusModified, true
	}
	if !ok {
		if line[0] != ' ' && line[0] != 'I' {
			scmcore.Unparsed("svn status", line)
		}
		return
	}
	path := scmcore.Relativize(c.baseDir, strings.TrimSpace(line[pathColumn:]))
	c.files = append(c.files, entities.NewScmFile(path, status))
}

func (c *StatusConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

// updateColumn maps the first column of "svn update", "checkout" and "export".
var updateColumn = map[byte]entities.ScmFileStatus{
	'A': entities.StatusAdded,
	'D': entities.StatusDeleted,
	'U': entities.StatusUpdated,
	'G': entities.StatusPatched,
	'C': entities.StatusConflict,
	'E': entities.StatusUpdated,
	'R': entities.StatusUpdated,
}

var updateLinePattern = regexp.MustCompile(`^([ADUCGER])[ ACGUDR]?[ B]?[ C]?\s+(\S.*)$`)

var revisionLinePattern = regexp.MustCompile(`(?:Updated to|At|Checked out|Exported|Committed) revision (\d+)\.`)

// UpdateConsumer parses update style output. Added files are reported with addedStatus,
// which is CHECKED_OUT for checkouts.
type UpdateConsumer struct {
	baseDir     string
	addedStatus entities.ScmFileStatus
	revision    *scmcore.RevisionConsumer
	files       []entities.ScmFile
}

func NewUpdateConsumer(baseDir string, addedStatus entities.ScmFileStatus) *UpdateConsumer {
	return &UpdateConsumer{
		baseDir:     baseDir,
		addedStatus: addedStatus,
		revision:    scmcore.NewRevisionConsumer(revisionLinePattern),
	}
}

func (c *UpdateConsumer) ConsumeLine(line string) {
	c.revision.ConsumeLine(line)
	m := updateLinePattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	status := updateColumn[m[1][0]]
	if status == entities.StatusAdded {
		status = c.addedStatus
	}
	path := scmcore.Relativize(c.baseDir, strings.TrimSpace(m[2]))
	c.files = append(c.files, entities.NewScmFile(path, status))
}

func (c *UpdateConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
	c.revision.Apply(result)
}

var checkInPattern = regexp.MustCompile(`^(?:Sending|Adding|Deleting|Replacing)\s+(?:\(bin\)\s+)?(.+)$`)

// CheckInConsumer parses "svn commit".
type CheckInConsumer struct {
	baseDir  string
	revision *scmcore.RevisionConsumer
	files    []entities.ScmFile
}

func NewCheckInConsumer(baseDir string) *CheckInConsumer {
	return &CheckInConsumer{baseDir: baseDir, revision: scmcore.NewRevisionConsumer(revisionLinePattern)}
}

func (c *CheckInConsumer) ConsumeLine(line string) {
	c.revision.ConsumeLine(line)
	if m := checkInPattern.FindStringSubmatch(line); m != nil {
		path := scmcore.Relativize(c.baseDir, strings.TrimSpace(m[1]))
		c.files = append(c.files, entities.NewScmFile(path, entities.StatusCheckedIn))
	}
}

func (c *CheckInConsumer) Apply(result *entities.ScmResult) {
	c.revision.Apply(result)
	for _, f := range c.files {
		result.AddFiles(f.WithRevision(result.Revision))
	}
}

var addPattern = regexp.MustCompile(`^([AD])\s+(?:\(bin\)\s+)?(.+)$`)

// NewAddRemoveConsumer parses the "A  path" and "D  path" lines of add, delete and mkdir.
func NewAddRemoveConsumer(baseDir string) *scmcore.LineFunc {
	var files []entities.ScmFile
	revision := scmcore.NewRevisionConsumer(revisionLinePattern)
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			revision.ConsumeLine(line)
			if m := addPattern.FindStringSubmatch(line); m != nil {
				status := entities.StatusAdded
				if m[1] == "D" {
					status = entities.StatusDeleted
				}
				files = append(files, entities.NewScmFile(scmcore.Relativize(baseDir, m[2]), status))
			}
		},
		OnApply: func(result *entities.ScmResult) {
			result.AddFiles(files...)
			revision.Apply(result)
		},
	}
}

var (
	logSeparator     = regexp.MustCompile(`^-{72}$`)
	logHeaderPattern = regexp.MustCompile(`^r(\d+) \| (.*?) \| (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} [+-]\d{4})`)
	logPathPattern   = regexp.MustCompile(`^\s+([AMDR]) (/\S.*?)(?: \(from (.+):(\d+)\))?$`)
)

type logState int

const (
	logWaitHeader logState = iota
	logPaths
	logComment
)

// ChangeLogConsumer parses "svn log -v".
type ChangeLogConsumer struct {
	request *entities.CommandRequest
	state   logState
	current *entities.ChangeSet
	comment []string
	sets    []entities.ChangeSet
}

func NewChangeLogConsumer(request *entities.CommandRequest) *ChangeLogConsumer {
	return &ChangeLogConsumer{request: request}
}

func (c *ChangeLogConsumer) ConsumeLine(line string) {
	if logSeparator.MatchString(line) {
		c.flush()
		c.state = logWaitHeader
		return
	}

	switch c.state {
	case logWaitHeader:
		m := logHeaderPattern.FindStringSubmatch(line)
		if m == nil {
			return
		}
		date, _ := scmcore.ParseDate(m[3], "2006-01-02 15:04:05 -0700")
		c.current = &entities.ChangeSet{Revision: m[1], Author: m[2], Date: date}
		c.state = logPaths
	case logPaths:
		if strings.HasPrefix(line, "Changed paths:") {
			return
		}
		if m := logPathPattern.FindStringSubmatch(line); m != nil {
			c.current.Files = append(c.current.Files, entities.ChangeFile{
				Name:             m[2],
				Revision:         c.current.Revision,
				PreviousRevision: m[4],
				Action:           changeAction(m[1]),
			})
			return
		}
		if line == "" {
			c.state = logComment
		}
	case logComment:
		c.comment = append(c.comment, line)
	}
}

func changeAction(letter string) entities.ScmFileStatus {
	switch letter {
	case "A":
		return entities.StatusAdded
	case "D":
		return entities.StatusDeleted
	case "R":
		return entities.StatusRenamed
	default:
		return entities.StatusModified
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
	result.ChangeLog = scmcore.BuildChangeLog(c.request, c.ChangeSets(), false)
}

type blameDocument struct {
	Targets []struct {
		Entries []struct {
			LineNumber int `xml:"line-number,attr"`
			Commit     struct {
				Revision string `xml:"revision,attr"`
				Author   string `xml:"author"`
				Date     string `xml:"date"`
			} `xml:"commit"`
		} `xml:"entry"`
	} `xml:"target"`
}

// BlameConsumer parses "svn blame --xml". The XML document is buffered and decoded on Apply.
type BlameConsumer struct {
	scmcore.LineCollector
}

func NewBlameConsumer() *BlameConsumer {
	return &BlameConsumer{}
}

func (c *BlameConsumer) Lines() []entities.BlameLine {
	var doc blameDocument
	if err := xml.Unmarshal([]byte(c.Text()), &doc); err != nil {
		logger.Warnf("Unparseable svn blame output: %v", err)
		return nil
	}
	var lines []entities.BlameLine
	for _, target := range doc.Targets {
		for _, entry := range target.Entries {
			date, _ := scmcore.ParseDate(entry.Commit.Date, time.RFC3339Nano)
			lines = append(lines, entities.BlameLine{
				Revision:   entry.Commit.Revision,
				Author:     entry.Commit.Author,
				Date:       date,
				LineNumber: entry.LineNumber,
			})
		}
	}
	return lines
}

func (c *BlameConsumer) Apply(result *entities.ScmResult) {
	result.Blame = append(result.Blame, c.Lines()...)
}

// InfoConsumer parses the "Key: value" blocks of "svn info".
type InfoConsumer struct {
	current *entities.InfoItem
	items   []entities.InfoItem
}

func NewInfoConsumer() *InfoConsumer {
	return &InfoConsumer{}
}

func (c *InfoConsumer) ConsumeLine(line string) {
	key, value, ok := strings.Cut(line, ": ")
	if !ok {
		if strings.TrimSpace(line) == "" {
			c.flush()
		}
		return
	}
	if c.current == nil {
		c.current = &entities.InfoItem{}
	}
	value = strings.TrimSpace(value)
	switch key {
	case "Path":
		c.current.Path = value
	case "URL":
		c.current.URL = value
	case "Repository Root":
		c.current.RepositoryRoot = value
	case "Repository UUID":
		c.current.RepositoryUUID = value
	case "Revision":
		c.current.Revision = value
	case "Node Kind":
		c.current.Kind = value
	case "Schedule":
		c.current.Schedule = value
	case "Last Changed Author":
		c.current.LastChangedAuthor = value
	case "Last Changed Rev":
		c.current.LastChangedRevision = value
	case "Last Changed Date":
		c.current.LastChangedDate = value
	}
}

func (c *InfoConsumer) flush() {
	if c.current != nil {
		c.items = append(c.items, *c.current)
		c.current = nil
	}
}

func (c *InfoConsumer) Items() []entities.InfoItem {
	c.flush()
	return c.items
}

func (c *InfoConsumer) Apply(result *entities.ScmResult) {
	result.Info = append(result.Info, c.Items()...)
	if len(result.Info) > 0 && result.Revision == "" {
		result.Revision = result.Info[0].Revision
	}
}

// NewNamesConsumer collects the entries of "svn list" on a tags or branches directory.
func NewNamesConsumer(add func(result *entities.ScmResult, name string)) *scmcore.LineFunc {
	var names []string
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if name := strings.TrimSuffix(strings.TrimSpace(line), "/"); name != "" {
				names = append(names, name)
			}
		},
		OnApply: func(result *entities.ScmResult) {
			for _, name := range names {
				add(result, name)
			}
		},
	}
}
