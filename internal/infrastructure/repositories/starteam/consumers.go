package starteam

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

var folderPattern = regexp.MustCompile(`^Folder: .*\(working dir: (.+)\)\s*$`)

// folderTracker follows the "Folder: x  (working dir: y)" lines that stcmd prints before the
// files of each folder.
type folderTracker struct {
	baseDir    string
	workingDir string
}

func (t *folderTracker) consume(line string) bool {
	m := folderPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	t.workingDir = strings.TrimSpace(m[1])
	return true
}

func (t *folderTracker) path(name string) string {
	name = strings.TrimSpace(name)
	if t.workingDir == "" {
		return scmcore.Relativize(t.baseDir, name)
	}
	return scmcore.Relativize(t.baseDir, filepath.Join(t.workingDir, name))
}

// ActionConsumer parses the "<file>: <action>" lines of co, ci, add, remove, lck and unlck.
type ActionConsumer struct {
	folders folderTracker
	action  string
	status  entities.ScmFileStatus
	files   []entities.ScmFile
}

func NewActionConsumer(baseDir, action string, status entities.ScmFileStatus) *ActionConsumer {
	return &ActionConsumer{folders: folderTracker{baseDir: baseDir}, action: ": " + action, status: status}
}

func (c *ActionConsumer) ConsumeLine(line string) {
	if c.folders.consume(line) {
		return
	}
	if name, found := strings.CutSuffix(strings.TrimSpace(line), c.action); found && name != "" {
		c.files = append(c.files, entities.NewScmFile(c.folders.path(name), c.status))
	}
}

func (c *ActionConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

// listStatuses maps the first column of "stcmd list". Current files are not reported.
var listStatuses = []struct {
	prefix string
	status entities.ScmFileStatus
}{
	{"Not in View", entities.StatusUnknown},
	{"Out of Date", entities.StatusPatched},
	{"Modified", entities.StatusModified},
	{"Missing", entities.StatusMissing},
	{"Merge", entities.StatusConflict},
	{"Unknown", entities.StatusUnknown},
}

// StatusConsumer parses "stcmd list".
type StatusConsumer struct {
	folders folderTracker
	files   []entities.ScmFile
}

func NewStatusConsumer(baseDir string) *StatusConsumer {
	return &StatusConsumer{folders: folderTracker{baseDir: baseDir}}
}

func (c *StatusConsumer) ConsumeLine(line string) {
	if c.folders.consume(line) {
		return
	}
	for _, entry := range listStatuses {
		if !strings.HasPrefix(line, entry.prefix) {
			continue
		}
		fields := strings.Fields(line[len(entry.prefix):])
		if len(fields) == 0 {
			return
		}
		c.files = append(c.files, entities.NewScmFile(c.folders.path(fields[len(fields)-1]), entry.status))
		return
	}
}

func (c *StatusConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

const (
	historySeparator = "----------------------------"
	fileSeparator    = "============================================================================="
)

var (
	historyForPattern = regexp.MustCompile(`^History for: (.+)$`)
	revisionPattern   = regexp.MustCompile(`^Revision: (\d+)`)
	authorPattern     = regexp.MustCompile(`^Author: (.+?) Date: (.+)$`)
)

// historyLayouts are the date renderings of stcmd hist across locales.
var historyLayouts = []string{
	"1/2/06 3:04:05 PM MST",
	"1/2/06 3:04 PM MST",
	"01/02/2006 3:04:05 PM MST",
	"1/2/06 3:04:05 PM",
	"2006-01-02 15:04:05 MST",
}

type histState int

const (
	histFile histState = iota
	histRevision
	histAuthor
	histComment
)

// ChangeLogConsumer parses "stcmd hist".
type ChangeLogConsumer struct {
	request *entities.CommandRequest
	folders folderTracker
	state   histState
	file    string
	current *entities.ChangeSet
	comment []string
	sets    []entities.ChangeSet
}

func NewChangeLogConsumer(request *entities.CommandRequest) *ChangeLogConsumer {
	return &ChangeLogConsumer{request: request, folders: folderTracker{baseDir: request.BaseDir()}}
}

func (c *ChangeLogConsumer) ConsumeLine(line string) {
	if c.state != histComment && c.folders.consume(line) {
		return
	}
	switch c.state {
	case histFile:
		if m := historyForPattern.FindStringSubmatch(line); m != nil {
			c.file = c.folders.path(m[1])
		} else if line == historySeparator && c.file != "" {
			c.state = histRevision
		}
	case histRevision:
		if m := revisionPattern.FindStringSubmatch(line); m != nil {
			c.current = &entities.ChangeSet{Revision: m[1]}
			c.state = histAuthor
		}
	case histAuthor:
		if m := authorPattern.FindStringSubmatch(line); m != nil {
			c.current.Author = m[1]
			c.current.Date, _ = scmcore.ParseDate(m[2], historyLayouts...)
			c.current.Files = []entities.ChangeFile{{Name: c.file, Revision: c.current.Revision, Action: entities.StatusModified}}
			c.state = histComment
		}
	case histComment:
		switch line {
		case historySeparator:
			c.flush()
			c.state = histRevision
		case fileSeparator:
			c.flush()
			c.file = ""
			c.state = histFile
		default:
			c.comment = append(c.comment, line)
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
}

func (c *ChangeLogConsumer) ChangeSets() []entities.ChangeSet {
	c.flush()
	return c.sets
}

func (c *ChangeLogConsumer) Apply(result *entities.ScmResult) {
	result.ChangeLog = scmcore.BuildChangeLog(c.request, c.ChangeSets(), true)
}
