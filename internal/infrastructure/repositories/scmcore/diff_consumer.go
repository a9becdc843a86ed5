package scmcore

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

var (
	gitDiffHeader      = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	hgDiffHeader       = regexp.MustCompile(`^diff (?:-r \S+ )+(.+)$`)
	bzrDiffHeader      = regexp.MustCompile(`^=== (?:modified|added|removed|renamed) file '(.+?)'`)
	perforceDiffHeader = regexp.MustCompile(`^==== (\S+?)#\S+ \(.*\) - (\S+?)#\S+ \(.*\) ====`)
)

// UnifiedDiffConsumer splits a multi-file unified diff into per-file texts. It understands
// the file headers of cvs and svn ("Index:"), git, hg, bazaar ("=== modified file") and
// perforce ("==== a#1 - b#2 ====").
type UnifiedDiffConsumer struct {
	// PathOf maps a header path (a depot path for perforce) to a working copy path.
	PathOf func(path string) string

	order   []string
	texts   map[string]*strings.Builder
	status  map[string]entities.ScmFileStatus
	patch   strings.Builder
	current string
	inHunk  bool
	// headed is set by a file header and cleared by the first hunk
	headed   bool
	fromNull bool
}

func NewUnifiedDiffConsumer() *UnifiedDiffConsumer {
	return &UnifiedDiffConsumer{
		texts:  make(map[string]*strings.Builder),
		status: make(map[string]entities.ScmFileStatus),
	}
}

func (c *UnifiedDiffConsumer) ConsumeLine(line string) {
	if path, ok := c.header(line); ok {
		c.start(path)
		c.headed = true
		c.patch.WriteString(line + "\n")
		return
	}

	switch {
	case c.inHunk && isHunkLine(line):
		c.append(line)
	case strings.HasPrefix(line, "@@"):
		c.inHunk = true
		c.headed = false
		c.append(line)
	case strings.HasPrefix(line, "--- "):
		c.fromNull = strings.HasPrefix(line, "--- /dev/null")
		c.inHunk = false
	case strings.HasPrefix(line, "+++ "):
		toNull := strings.HasPrefix(line, "+++ /dev/null")
		if !c.headed && !toNull {
			c.start(diffPath(strings.TrimPrefix(line, "+++ ")))
		}
		switch {
		case c.current == "":
		case c.fromNull:
			c.status[c.current] = entities.StatusAdded
		case toNull:
			c.status[c.current] = entities.StatusDeleted
		}
		c.inHunk = false
	default:
		c.inHunk = false
	}
	c.patch.WriteString(line + "\n")
}

func isHunkLine(line string) bool {
	return line == "" || line[0] == '+' || line[0] == '-' || line[0] == ' ' || line[0] == '\\'
}

func (c *UnifiedDiffConsumer) header(line string) (string, bool) {
	if strings.HasPrefix(line, "Index: ") {
		return strings.TrimSpace(strings.TrimPrefix(line, "Index: ")), true
	}
	if m := gitDiffHeader.FindStringSubmatch(line); m != nil {
		return m[2], true
	}
	if m := perforceDiffHeader.FindStringSubmatch(line); m != nil {
		return m[2], true
	}
	if m := bzrDiffHeader.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := hgDiffHeader.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	return "", false
}

func (c *UnifiedDiffConsumer) start(path string) {
	if c.PathOf != nil {
		path = c.PathOf(path)
	}
	c.current = path
	c.inHunk = false
	if _, seen := c.texts[path]; !seen {
		c.order = append(c.order, path)
		c.texts[path] = &strings.Builder{}
		c.status[path] = entities.StatusModified
	}
}

func (c *UnifiedDiffConsumer) append(line string) {
	if c.current == "" {
		return
	}
	c.texts[c.current].WriteString(line + "\n")
}

// diffPath strips the "b/" prefix and the trailing timestamp of a ---/+++ line.
func diffPath(raw string) string {
	path, _, _ := strings.Cut(raw, "\t")
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "b/") || strings.HasPrefix(path, "a/") {
		path = path[2:]
	}
	return path
}

// Paths returns the files in the order they appeared.
func (c *UnifiedDiffConsumer) Paths() []string {
	return c.order
}

func (c *UnifiedDiffConsumer) Apply(result *entities.ScmResult) {
	for _, path := range c.order {
		result.AddFiles(entities.NewScmFile(path, c.status[path]))
		result.AddDifference(path, c.texts[path].String())
	}
	result.Patch = c.patch.String()
}
