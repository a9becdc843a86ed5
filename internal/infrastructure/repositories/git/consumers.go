package git

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// porcelainTable maps the two column "XY" code of "git status --porcelain".
var porcelainTable = map[string]entities.ScmFileStatus{
	"A ": entities.StatusAdded,
	"AM": entities.StatusAdded,
	"AD": entities.StatusAdded,
	"M ": entities.StatusModified,
	" M": entities.StatusModified,
	"MM": entities.StatusModified,
	"MD": entities.StatusModified,
	"T ": entities.StatusModified,
	" T": entities.StatusModified,
	"D ": entities.StatusDeleted,
	" D": entities.StatusDeleted,
	"R ": entities.StatusRenamed,
	"RM": entities.StatusRenamed,
	"RD": entities.StatusRenamed,
	"C ": entities.StatusCopied,
	"CM": entities.StatusCopied,
	"UU": entities.StatusConflict,
	"AA": entities.StatusConflict,
	"DD": entities.StatusConflict,
	"AU": entities.StatusConflict,
	"UA": entities.StatusConflict,
	"DU": entities.StatusConflict,
	"UD": entities.StatusConflict,
	"??": entities.StatusUnknown,
}

// StatusConsumer parses "git status --porcelain" lines. Paths are reported by git relative
// to the repository root; prefix (from "rev-parse --show-prefix") maps them to the base dir.
type StatusConsumer struct {
	prefix string
	files  []entities.ScmFile
}

func NewStatusConsumer(prefix string) *StatusConsumer {
	return &StatusConsumer{prefix: strings.TrimSpace(prefix)}
}

func (c *StatusConsumer) ConsumeLine(line string) {
	if len(line) < 4 {
		return
	}
	status, ok := porcelainTable[line[:2]]
	if !ok {
		scmcore.Unparsed("git status", line)
		return
	}

	path, original := unquote(line[3:]), ""
	if from, to, renamed := strings.Cut(line[3:], " -> "); renamed {
		original, path = unquote(from), unquote(to)
	}
	file := entities.NewScmFile(scmcore.StripPrefix(c.prefix, path), status)
	if original != "" {
		file.OriginalPath = scmcore.StripPrefix(c.prefix, original)
	}
	c.files = append(c.files, file)
}

func (c *StatusConsumer) Files() []entities.ScmFile {
	return c.files
}

func (c *StatusConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.files...)
}

// unquote removes the C style quotes git puts around paths with special characters.
func unquote(path string) string {
	path = strings.TrimSpace(path)
	if len(path) >= 2 && strings.HasPrefix(path, `"`) && strings.HasSuffix(path, `"`) {
		if unquoted, err := strconv.Unquote(path); err == nil {
			return unquoted
		}
	}
	return path
}

// nameStatusTable maps "git diff --name-status" letters after an update.
var nameStatusTable = map[string]entities.ScmFileStatus{
	"A": entities.StatusAdded,
	"D": entities.StatusDeleted,
	"M": entities.StatusUpdated,
	"T": entities.StatusUpdated,
	"R": entities.StatusRenamed,
	"C": entities.StatusCopied,
	"U": entities.StatusConflict,
}

// NewNameStatusConsumer parses "<letter>[score]\t<path>[\t<new path>]" lines.
func NewNameStatusConsumer() *scmcore.StatusTableConsumer {
	consumer := scmcore.NewStatusTableConsumer(nameStatusTable)
	consumer.PathOf = func(rest string) string {
		fields := strings.Split(rest, "\t")
		return unquote(fields[len(fields)-1])
	}
	return consumer
}

var (
	commitPattern = regexp.MustCompile(`^commit ([0-9a-f]{7,64})`)
	authorPattern = regexp.MustCompile(`^Author:\s+(.*?)\s*(?:<.*>)?$`)
	datePattern   = regexp.MustCompile(`^(?:Author)?Date:\s+(.*)$`)
	rawPattern    = regexp.MustCompile(`^:\d+ \d+ ([0-9a-f]+)\.* ([0-9a-f]+)\.* ([A-Z])\d*\t(.*)$`)
)

type changeLogState int

const (
	stateHeader changeLogState = iota
	stateComment
	stateFiles
)

// ChangeLogConsumer parses "git log --raw --date=iso-strict" output.
type ChangeLogConsumer struct {
	request *entities.CommandRequest
	state   changeLogState
	current *entities.ChangeSet
	comment []string
	sets    []entities.ChangeSet
}

func NewChangeLogConsumer(request *entities.CommandRequest) *ChangeLogConsumer {
	return &ChangeLogConsumer{request: request}
}

func (c *ChangeLogConsumer) ConsumeLine(line string) {
	if m := commitPattern.FindStringSubmatch(line); m != nil {
		c.flush()
		c.current = &entities.ChangeSet{Revision: m[1]}
		c.state = stateHeader
		return
	}
	if c.current == nil {
		return
	}

	switch c.state {
	case stateHeader:
		if m := authorPattern.FindStringSubmatch(line); m != nil {
			c.current.Author = m[1]
		} else if m := datePattern.FindStringSubmatch(line); m != nil {
			if t, ok := scmcore.ParseDate(m[1], time.RFC3339, "2006-01-02 15:04:05 -0700"); ok {
				c.current.Date = t
			}
		} else if line == "" {
			c.state = stateComment
		}
	case stateComment:
		if strings.HasPrefix(line, "    ") {
			c.comment = append(c.comment, line[4:])
			return
		}
		if line == "" {
			return
		}
		c.state = stateFiles
		c.consumeFile(line)
	case stateFiles:
		c.consumeFile(line)
	}
}

func (c *ChangeLogConsumer) consumeFile(line string) {
	m := rawPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	action := nameStatusTable[m[3]]
	if action == entities.StatusUpdated {
		action = entities.StatusModified
	}
	name := m[4]
	if _, to, renamed := strings.Cut(name, "\t"); renamed {
		name = to
	}
	c.current.Files = append(c.current.Files, entities.ChangeFile{
		Name:             unquote(name),
		Revision:         c.current.Revision,
		PreviousRevision: strings.TrimLeft(m[1], "0"),
		Action:           action,
	})
}

func (c *ChangeLogConsumer) flush() {
	if c.current == nil {
		return
	}
	c.current.Comment = strings.TrimRight(strings.Join(c.comment, "\n"), "\n")
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

var blameHeaderPattern = regexp.MustCompile(`^([0-9a-f]{40,64}) \d+ (\d+)(?: \d+)?$`)

type blameCommit struct {
	author string
	date   time.Time
}

// BlameConsumer parses "git blame --porcelain". Commit details are printed once per commit.
type BlameConsumer struct {
	commits map[string]*blameCommit
	sha     string
	lineNo  int
	lines   []entities.BlameLine
}

func NewBlameConsumer() *BlameConsumer {
	return &BlameConsumer{commits: make(map[string]*blameCommit)}
}

func (c *BlameConsumer) ConsumeLine(line string) {
	if m := blameHeaderPattern.FindStringSubmatch(line); m != nil {
		c.sha = m[1]
		c.lineNo, _ = strconv.Atoi(m[2])
		if _, ok := c.commits[c.sha]; !ok {
			c.commits[c.sha] = &blameCommit{}
		}
		return
	}
	if c.sha == "" {
		return
	}

	commit := c.commits[c.sha]
	switch {
	case strings.HasPrefix(line, "\t"):
		c.lines = append(c.lines, entities.BlameLine{
			Revision:   c.sha,
			Author:     commit.author,
			Date:       commit.date,
			LineNumber: c.lineNo,
			Line:       line[1:],
		})
	case strings.HasPrefix(line, "author "):
		commit.author = strings.TrimPrefix(line, "author ")
	case strings.HasPrefix(line, "author-time "):
		if secs, err := strconv.ParseInt(strings.TrimPrefix(line, "author-time "), 10, 64); err == nil {
			commit.date = time.Unix(secs, 0).UTC()
		}
	}
}

func (c *BlameConsumer) Lines() []entities.BlameLine {
	return c.lines
}

func (c *BlameConsumer) Apply(result *entities.ScmResult) {
	result.Blame = append(result.Blame, c.lines...)
}

// RemoteInfoConsumer parses "git ls-remote" into branches and tags.
type RemoteInfoConsumer struct {
	branches map[string]string
	tags     map[string]string
}

func NewRemoteInfoConsumer() *RemoteInfoConsumer {
	return &RemoteInfoConsumer{branches: map[string]string{}, tags: map[string]string{}}
}

func (c *RemoteInfoConsumer) ConsumeLine(line string) {
	sha, ref, ok := strings.Cut(line, "\t")
	if !ok {
		return
	}
	switch {
	case strings.HasPrefix(ref, "refs/heads/"):
		c.branches[strings.TrimPrefix(ref, "refs/heads/")] = sha
	case strings.HasPrefix(ref, "refs/tags/"):
		name := strings.TrimPrefix(ref, "refs/tags/")
		// annotated tags list the peeled commit as "name^{}"
		if peeled, isPeeled := strings.CutSuffix(name, "^{}"); isPeeled {
			c.tags[peeled] = sha
			return
		}
		if _, seen := c.tags[name]; !seen {
			c.tags[name] = sha
		}
	}
}

func (c *RemoteInfoConsumer) Apply(result *entities.ScmResult) {
	for name, sha := range c.branches {
		result.AddBranch(name, sha)
	}
	for name, sha := range c.tags {
		result.AddTag(name, sha)
	}
}

// rmPattern matches the "rm 'path'" lines of "git rm".
var rmPattern = regexp.MustCompile(`^rm '(.*)'$`)

// NewRemoveConsumer parses "git rm" output.
func NewRemoveConsumer() *scmcore.LineFunc {
	var files []entities.ScmFile
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if m := rmPattern.FindStringSubmatch(line); m != nil {
				files = append(files, entities.NewScmFile(m[1], entities.StatusDeleted))
			}
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}
