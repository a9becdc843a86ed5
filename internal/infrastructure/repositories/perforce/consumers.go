package perforce

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

const p4DateLayout = "2006/01/02 15:04:05"

// actions maps the perforce file actions to a status.
var actions = map[string]entities.ScmFileStatus{
	"add":         entities.StatusAdded,
	"move/add":    entities.StatusAdded,
	"branch":      entities.StatusAdded,
	"edit":        entities.StatusModified,
	"integrate":   entities.StatusUpdated,
	"delete":      entities.StatusDeleted,
	"move/delete": entities.StatusDeleted,
}

// depotRelative maps a depot path below the repository path to a relative one.
func depotRelative(repository *Repository, depotPath string) string {
	return scmcore.StripPrefix(repository.Path, strings.TrimSpace(depotPath))
}

var openedPattern = regexp.MustCompile(`^(//[^#]+)#(\d+|none) - (?:opened for|currently opened for|was) (\S+?)(?:,.*)?$`)

// OpenConsumer parses the reports of add, delete, edit and revert:
// "//depot/p/a.txt#1 - opened for add".
type OpenConsumer struct {
	repository *Repository
	status     entities.ScmFileStatus
	files      []entities.ScmFile
}

// NewOpenConsumer reports every opened file with status; the empty status keeps the action.
func NewOpenConsumer(repository *Repository, status entities.ScmFileStatus) *OpenConsumer {
	return &OpenConsumer{repository: repository, status: status}
}

func (c *OpenConsumer) ConsumeLine(line string) {
	m := openedPattern.FindStringSubmatch(line)
	if m == nil {
		scmcore.Unparsed("p4 opened", line)
		return
	}
	status := c.status
	if status == "" {
		status = actions[m[3]]
	}
	file := entities.NewScmFile(depotRelative(c.repository, m[1]), status)
	if m[2] != "none" {
		file = file.WithRevision(m[2])
	}
	c.files = append(c.files, file)
}

func (c *OpenConsumer) Files() []entities.ScmFile {
	return c.files
}

func (c *OpenConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

var statusPattern = regexp.MustCompile(`^(//[^#]+)#(\d+|none) - (\S+) `)

// StatusConsumer parses "p4 opened": "//depot/p/a.txt#1 - edit default change (text)".
type StatusConsumer struct {
	repository *Repository
	files      []entities.ScmFile
}

func NewStatusConsumer(repository *Repository) *StatusConsumer {
	return &StatusConsumer{repository: repository}
}

func (c *StatusConsumer) ConsumeLine(line string) {
	m := statusPattern.FindStringSubmatch(line)
	if m == nil {
		scmcore.Unparsed("p4 opened", line)
		return
	}
	status, ok := actions[m[3]]
	if !ok {
		scmcore.Unparsed("p4 opened", line)
		return
	}
	c.files = append(c.files, entities.NewScmFile(depotRelative(c.repository, m[1]), status))
}

// DepotPaths lists the opened files as depot paths, for a submit change spec.
func (c *StatusConsumer) DepotPaths() []string {
	paths := make([]string, 0, len(c.files))
	for _, f := range c.files {
		paths = append(paths, c.repository.Path+"/"+f.Path)
	}
	return paths
}

func (c *StatusConsumer) Files() []entities.ScmFile {
	return c.files
}

func (c *StatusConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

var (
	submittedFilePattern = regexp.MustCompile(`^(?:add|edit|delete|branch|integrate|move/add|move/delete) (//[^#]+)#(\d+)$`)
	submittedPattern     = regexp.MustCompile(`^Change (\d+) (?:renamed change (\d+) and )?submitted\.`)
)

// NewCheckInConsumer parses "p4 submit -i".
func NewCheckInConsumer(repository *Repository) *scmcore.LineFunc {
	var (
		files    []entities.ScmFile
		revision string
	)
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if m := submittedFilePattern.FindStringSubmatch(line); m != nil {
				files = append(files, entities.NewScmFile(depotRelative(repository, m[1]), entities.StatusCheckedIn).WithRevision(m[2]))
				return
			}
			if m := submittedPattern.FindStringSubmatch(line); m != nil {
				revision = m[1]
				if m[2] != "" {
					revision = m[2]
				}
			}
		},
		OnApply: func(result *entities.ScmResult) {
			result.AddFiles(files...)
			result.Revision = revision
		},
	}
}

var syncPattern = regexp.MustCompile(`^(//[^#]+)#(\d+) - (added as|updating|refreshing|deleted as|replacing|is opened and not being changed)`)

// NewSyncConsumer parses "p4 sync". Fresh files get status; the others keep their action.
func NewSyncConsumer(repository *Repository, status entities.ScmFileStatus) *scmcore.LineFunc {
	var files []entities.ScmFile
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			m := syncPattern.FindStringSubmatch(line)
			if m == nil {
				return
			}
			fileStatus := status
			switch m[3] {
			case "deleted as":
				fileStatus = entities.StatusDeleted
			case "updating", "replacing":
				if status == entities.StatusUpdated {
					fileStatus = entities.StatusUpdated
				}
			case "is opened and not being changed":
				return
			}
			files = append(files, entities.NewScmFile(depotRelative(repository, m[1]), fileStatus).WithRevision(m[2]))
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}

var labelSyncPattern = regexp.MustCompile(`^(//[^#]+)#(\d+) - (?:added|updated|deleted)`)

// NewLabelSyncConsumer parses "p4 labelsync".
func NewLabelSyncConsumer(repository *Repository) *scmcore.LineFunc {
	var files []entities.ScmFile
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if m := labelSyncPattern.FindStringSubmatch(line); m != nil {
				files = append(files, entities.NewScmFile(depotRelative(repository, m[1]), entities.StatusTagged).WithRevision(m[2]))
			}
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}

var changePattern = regexp.MustCompile(`^Change (\d+) on (\d{4}/\d{2}/\d{2}(?: \d{2}:\d{2}:\d{2})?) by (\S+?)@(\S+)`)

// ChangeLogConsumer parses "p4 changes -l -t": a header line followed by a tab indented
// description.
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
	if m := changePattern.FindStringSubmatch(line); m != nil {
		c.flush()
		date, _ := scmcore.ParseDate(m[2], p4DateLayout, "2006/01/02")
		c.current = &entities.ChangeSet{Revision: m[1], Date: date, Author: m[3]}
		return
	}
	if c.current != nil && strings.HasPrefix(line, "\t") {
		c.comment = append(c.comment, strings.TrimPrefix(line, "\t"))
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

var annotatePattern = regexp.MustCompile(`^(\d+): (\S+) (\d{4}/\d{2}/\d{2}) ?(.*)$`)

// NewBlameConsumer parses "p4 annotate -u -c -q": "123: john 2010/01/12 content".
func NewBlameConsumer() *scmcore.LineFunc {
	var lines []entities.BlameLine
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			m := annotatePattern.FindStringSubmatch(line)
			if m == nil {
				scmcore.Unparsed("p4 annotate", line)
				return
			}
			date, _ := scmcore.ParseDate(m[3], "2006/01/02")
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

// FstatConsumer parses the "... key value" blocks of "p4 fstat".
type FstatConsumer struct {
	repository *Repository
	current    map[string]string
	items      []entities.InfoItem
}

func NewFstatConsumer(repository *Repository) *FstatConsumer {
	return &FstatConsumer{repository: repository}
}

func (c *FstatConsumer) ConsumeLine(line string) {
	if strings.TrimSpace(line) == "" {
		c.flush()
		return
	}
	key, value, found := strings.Cut(strings.TrimPrefix(line, "... "), " ")
	if !found {
		return
	}
	if c.current == nil {
		c.current = make(map[string]string)
	}
	c.current[key] = value
}

func (c *FstatConsumer) flush() {
	if c.current == nil {
		return
	}
	depotFile := c.current["depotFile"]
	c.items = append(c.items, entities.InfoItem{
		Path:                depotRelative(c.repository, depotFile),
		URL:                 depotFile,
		RepositoryRoot:      c.repository.Path,
		Revision:            c.current["headRev"],
		Kind:                c.current["headType"],
		LastChangedRevision: c.current["headChange"],
		LastChangedDate:     c.current["headTime"],
	})
	c.current = nil
}

func (c *FstatConsumer) Apply(result *entities.ScmResult) {
	c.flush()
	result.Info = append(result.Info, c.items...)
}
