package tfs

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// changeTypes maps the first pending change word of tf to a status.
var changeTypes = map[string]entities.ScmFileStatus{
	"add":      entities.StatusAdded,
	"branch":   entities.StatusAdded,
	"undelete": entities.StatusAdded,
	"edit":     entities.StatusModified,
	"merge":    entities.StatusModified,
	"encoding": entities.StatusModified,
	"delete":   entities.StatusDeleted,
	"rename":   entities.StatusRenamed,
	"lock":     entities.StatusLocked,
}

// changeType reads "edit, encoding" style change lists.
func changeType(value string) entities.ScmFileStatus {
	first, _, _ := strings.Cut(strings.TrimSpace(value), ",")
	if status, ok := changeTypes[strings.ToLower(strings.TrimSpace(first))]; ok {
		return status
	}
	return entities.StatusUnknown
}

var (
	detailPattern    = regexp.MustCompile(`^\s+([A-Za-z][A-Za-z -]*?)\s*:\s?(.*)$`)
	localItemPattern = regexp.MustCompile(`^\[[^\]]*\]\s*(.+)$`)
	changesetPattern = regexp.MustCompile(`Changeset #(\d+) checked in\.`)
	pendingPattern   = regexp.MustCompile(`^(?:Checking in )?([a-z]+(?:, [a-z]+)*): (.+)$`)
)

// StatusConsumer parses "tf status -format:detailed": a server item line followed by
// indented "Key : value" details.
type StatusConsumer struct {
	baseDir string
	change  string
	files   []entities.ScmFile
}

func NewStatusConsumer(baseDir string) *StatusConsumer {
	return &StatusConsumer{baseDir: baseDir}
}

func (c *StatusConsumer) ConsumeLine(line string) {
	if strings.HasPrefix(line, "$/") {
		c.change = ""
		return
	}
	m := detailPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	switch strings.ToLower(m[1]) {
	case "change":
		c.change = m[2]
	case "local item":
		local := m[2]
		if item := localItemPattern.FindStringSubmatch(local); item != nil {
			local = item[1]
		}
		if c.change != "" {
			c.files = append(c.files, entities.NewScmFile(scmcore.Relativize(c.baseDir, local), changeType(c.change)))
		}
	}
}

func (c *StatusConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

// GetConsumer parses "tf get": "<dir>:" headers followed by "Getting x", "Replacing x" and
// "Deleting x" lines.
type GetConsumer struct {
	baseDir string
	// fetched is the status of gotten and replaced files
	fetched entities.ScmFileStatus
	dir     string
	files   []entities.ScmFile
}

func NewGetConsumer(baseDir string, fetched entities.ScmFileStatus) *GetConsumer {
	return &GetConsumer{baseDir: baseDir, fetched: fetched}
}

func (c *GetConsumer) ConsumeLine(line string) {
	line = strings.TrimRight(line, " \r")
	if line == "" {
		return
	}
	if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
		c.dir = strings.TrimSuffix(line, ":")
		return
	}
	verb, name, found := strings.Cut(line, " ")
	if !found {
		return
	}
	var status entities.ScmFileStatus
	switch verb {
	case "Getting", "Replacing", "Adding":
		status = c.fetched
	case "Deleting":
		status = entities.StatusDeleted
	case "Conflict":
		status = entities.StatusConflict
		name = strings.TrimSuffix(strings.TrimSpace(name), " - Unable to perform the get operation because you have a conflicting edit")
	default:
		return
	}
	path := strings.TrimSpace(name)
	if c.dir != "" {
		path = c.dir + "/" + path
	}
	c.files = append(c.files, entities.NewScmFile(scmcore.Relativize(c.baseDir, path), status))
}

func (c *GetConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

// NewCheckInConsumer reads the pending change lines and "Changeset #N checked in.".
func NewCheckInConsumer(baseDir string) *scmcore.LineFunc {
	var files []entities.ScmFile
	dir, changeset := "", ""
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			trimmed := strings.TrimSpace(line)
			switch {
			case changesetPattern.MatchString(trimmed):
				changeset = changesetPattern.FindStringSubmatch(trimmed)[1]
			case strings.HasSuffix(trimmed, ":") && !strings.Contains(trimmed, " "):
				dir = strings.TrimSuffix(trimmed, ":")
			default:
				if m := pendingPattern.FindStringSubmatch(trimmed); m != nil {
					path := m[2]
					if dir != "" {
						path = dir + "/" + path
					}
					files = append(files, entities.NewScmFile(scmcore.Relativize(baseDir, path), entities.StatusCheckedIn))
				}
			}
		},
		OnApply: func(result *entities.ScmResult) {
			for i := range files {
				files[i] = files[i].WithRevision(changeset)
			}
			result.AddFiles(files...)
			result.Revision = changeset
		},
	}
}

// isSeparator matches the dashed line that opens every changeset.
func isSeparator(line string) bool {
	return len(line) >= 20 && strings.Trim(line, "-") == ""
}

// historyLayouts are the dates of "tf history -format:detailed" in common locales.
var historyLayouts = []string{
	"Monday, January 2, 2006 3:04:05 PM",
	"Monday, January 2, 2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"2006-01-02 15:04:05",
}

type historyState int

const (
	historyHeader historyState = iota
	historyComment
	historyItems
	historyNotes
)

// ChangeLogConsumer parses "tf history -format:detailed".
type ChangeLogConsumer struct {
	request *entities.CommandRequest
	state   historyState
	current *entities.ChangeSet
	comment []string
	sets    []entities.ChangeSet
}

func NewChangeLogConsumer(request *entities.CommandRequest) *ChangeLogConsumer {
	return &ChangeLogConsumer{request: request}
}

func (c *ChangeLogConsumer) ConsumeLine(line string) {
	if isSeparator(line) {
		c.flush()
		c.current = &entities.ChangeSet{}
		c.state = historyHeader
		return
	}
	if c.current == nil {
		return
	}

	key, value, isField := strings.Cut(line, ":")
	if isField && !strings.HasPrefix(line, " ") {
		switch strings.TrimSpace(key) {
		case "Changeset":
			c.current.Revision = strings.TrimSpace(value)
			return
		case "User", "Checked in by":
			if c.current.Author == "" || strings.TrimSpace(key) == "Checked in by" {
				c.current.Author = strings.TrimSpace(value)
			}
			return
		case "Date":
			c.current.Date, _ = scmcore.ParseDate(value, historyLayouts...)
			return
		case "Comment":
			c.state = historyComment
			return
		case "Items":
			c.state = historyItems
			return
		case "Check-in Notes", "Policy Warnings":
			c.state = historyNotes
			return
		}
	}

	switch c.state {
	case historyComment:
		c.comment = append(c.comment, strings.TrimSpace(line))
	case historyItems:
		action, item, found := strings.Cut(strings.TrimSpace(line), " $/")
		if found {
			c.current.Files = append(c.current.Files, entities.ChangeFile{
				Name:     "$/" + item,
				Revision: c.current.Revision,
				Action:   changeType(action),
			})
		}
	}
}

func (c *ChangeLogConsumer) flush() {
	if c.current == nil {
		return
	}
	c.current.Comment = strings.TrimSpace(strings.Join(c.comment, "\n"))
	for i := range c.current.Files {
		c.current.Files[i].Revision = c.current.Revision
	}
	if c.current.Revision != "" {
		c.sets = append(c.sets, *c.current)
	}
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

// NewDirConsumer parses "tf dir -recursive": "$/dir:" headers, "$sub" folders and file names.
func NewDirConsumer(serverPath string) *scmcore.LineFunc {
	var files []entities.ScmFile
	dir := ""
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			line = strings.TrimSpace(line)
			switch {
			case line == "", strings.HasSuffix(line, "item(s)"):
			case strings.HasPrefix(line, "$/") && strings.HasSuffix(line, ":"):
				dir = scmcore.StripPrefix(serverPath, strings.TrimSuffix(line, ":"))
				if dir == strings.TrimSuffix(serverPath, "/") {
					dir = ""
				}
			case strings.HasPrefix(line, "$"):
			default:
				path := line
				if dir != "" {
					path = dir + "/" + line
				}
				files = append(files, entities.NewScmFile(path, entities.StatusCheckedIn))
			}
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}
