package jazz

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

var changePattern = regexp.MustCompile(`^\s*([-a-z$!]{3,5})\s+([/\\].+)$`)

// componentRelative drops the leading component segment of a jazz path ("/Comp/src/a.txt").
func componentRelative(path string) string {
	path = strings.TrimPrefix(strings.ReplaceAll(path, `\`, "/"), "/")
	if _, rest, found := strings.Cut(path, "/"); found {
		return rest
	}
	return path
}

// changeStatus reads the flag column of a change ("--a--", "-c-", "d--").
func changeStatus(flags string, modified entities.ScmFileStatus) entities.ScmFileStatus {
	switch {
	case strings.Contains(flags, "a"):
		return entities.StatusAdded
	case strings.Contains(flags, "d"):
		return entities.StatusDeleted
	case strings.Contains(flags, "m"):
		return entities.StatusRenamed
	case strings.Contains(flags, "!"):
		return entities.StatusConflict
	default:
		return modified
	}
}

type statusSection int

const (
	sectionNone statusSection = iota
	sectionUnresolved
	sectionOutgoing
	sectionIncoming
)

// StatusConsumer parses "scm status": workspace, component, then unresolved and outgoing
// change sections. Incoming changes are not local modifications and are skipped.
type StatusConsumer struct {
	Workspace string
	Component string
	section   statusSection
	files     []entities.ScmFile
}

func NewStatusConsumer() *StatusConsumer {
	return &StatusConsumer{}
}

var (
	workspacePattern = regexp.MustCompile(`^Workspace: \(\d+\) "(.+?)"`)
	componentPattern = regexp.MustCompile(`^\s*Component: \(\d+\) "(.+?)"`)
)

func (c *StatusConsumer) ConsumeLine(line string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case workspacePattern.MatchString(line):
		c.Workspace = workspacePattern.FindStringSubmatch(line)[1]
	case componentPattern.MatchString(line):
		c.Component = componentPattern.FindStringSubmatch(line)[1]
		c.section = sectionNone
	case trimmed == "Unresolved:":
		c.section = sectionUnresolved
	case trimmed == "Outgoing:":
		c.section = sectionOutgoing
	case trimmed == "Incoming:":
		c.section = sectionIncoming
	case c.section == sectionUnresolved || c.section == sectionOutgoing:
		m := changePattern.FindStringSubmatch(line)
		if m == nil || strings.HasSuffix(m[2], "/") {
			return
		}
		c.files = append(c.files, entities.NewScmFile(componentRelative(m[2]), changeStatus(m[1], entities.StatusModified)))
	}
}

func (c *StatusConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

// NewAcceptConsumer parses the change lines printed by "scm accept -v".
func NewAcceptConsumer() *scmcore.LineFunc {
	var files []entities.ScmFile
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			m := changePattern.FindStringSubmatch(line)
			if m == nil || strings.HasSuffix(m[2], "/") || strings.HasSuffix(m[2], `\`) {
				return
			}
			files = append(files, entities.NewScmFile(componentRelative(m[2]), changeStatus(m[1], entities.StatusUpdated)))
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}

var changeSetPattern = regexp.MustCompile(`^\s*\((\d+)\)\s+\S+\s+(.+?)\s+"(.*)"\s+(.+)$`)

var jazzDateLayouts = []string{
	"02-Jan-2006 03:04 PM",
	"Jan 2, 2006 3:04 PM",
	"2006-01-02 15:04",
}

// NewChangeSetsConsumer parses "scm list changesets": `(1004) ---$ John "msg" 12-Jan-2010 10:00 AM`.
func NewChangeSetsConsumer(request *entities.CommandRequest) *scmcore.LineFunc {
	var sets []entities.ChangeSet
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			m := changeSetPattern.FindStringSubmatch(line)
			if m == nil {
				return
			}
			date, _ := scmcore.ParseDate(m[4], jazzDateLayouts...)
			sets = append(sets, entities.ChangeSet{Revision: m[1], Author: m[2], Comment: m[3], Date: date})
		},
		OnApply: scmcore.ChangeLogApply(request, &sets, false),
	}
}

var annotatePattern = regexp.MustCompile(`^(\d+)\s+(.+?)\s+\((\d+)\)\s+(\d{4}-\d{2}-\d{2})\s?(.*)$`)

// NewBlameConsumer parses "scm annotate": "1 John (1008) 2011-12-14 content".
func NewBlameConsumer() *scmcore.LineFunc {
	var lines []entities.BlameLine
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			m := annotatePattern.FindStringSubmatch(line)
			if m == nil {
				scmcore.Unparsed("scm annotate", line)
				return
			}
			date, _ := scmcore.ParseDate(m[4], "2006-01-02")
			lines = append(lines, entities.BlameLine{
				Revision:   m[3],
				Author:     m[2],
				Date:       date,
				LineNumber: len(lines) + 1,
				Line:       m[5],
			})
		},
		OnApply: func(result *entities.ScmResult) { result.Blame = append(result.Blame, lines...) },
	}
}

// NewRemoteFilesConsumer parses "scm list remotefiles", one component path per line.
func NewRemoteFilesConsumer() *scmcore.LineFunc {
	return scmcore.ListConsumer(entities.StatusCheckedIn, func(line string) string {
		path := strings.TrimSpace(line)
		if path == "" || strings.HasSuffix(path, "/") {
			return ""
		}
		return componentRelative(path)
	})
}
