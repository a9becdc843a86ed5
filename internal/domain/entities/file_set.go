package entities

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/emirpasic/gods/sets/linkedhashset"
)

// DefaultExcludes are the SCM bookkeeping paths that pattern based file sets never match.
func DefaultExcludes() []string {
	return []string{
		"**/.git/**", "**/.svn/**", "**/CVS/**", "**/.hg/**", "**/.bzr/**",
		"**/.jazz5/**", "**/.scmforge-local",
	}
}

// FileSet is a base directory plus an ordered list of relative paths to operate on.
// An empty list means "the whole tree".
type FileSet struct {
	BaseDir  string
	Includes []string
	Excludes []string
	files    *linkedhashset.Set
}

// NewFileSet creates a file set rooted at baseDir. Paths are normalized to forward
// slashes relative to baseDir; duplicates keep their first position.
func NewFileSet(baseDir string, files ...string) *FileSet {
	fs := &FileSet{BaseDir: baseDir, files: linkedhashset.New()}
	fs.Add(files...)
	return fs
}

// NewFileSetWithPatterns expands doublestar include and exclude patterns below baseDir.
// An empty include list means "**".
func NewFileSetWithPatterns(baseDir string, includes, excludes []string) (*FileSet, error) {
	for _, p := range append(append([]string{}, includes...), excludes...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid file pattern: %q", p)
		}
	}

	fs := &FileSet{BaseDir: baseDir, Includes: includes, Excludes: excludes, files: linkedhashset.New()}
	if len(includes) == 0 {
		includes = []string{"**"}
	}

	allExcludes := append(DefaultExcludes(), excludes...)
	var matched []string
	for _, include := range includes {
		found, err := doublestar.Glob(os.DirFS(baseDir), include)
		if err != nil {
			return nil, fmt.Errorf("expanding %q in %s: %w", include, baseDir, err)
		}
		for _, candidate := range found {
			info, statErr := os.Stat(filepath.Join(baseDir, candidate))
			if statErr != nil || info.IsDir() {
				continue
			}
			if !isExcluded(candidate, allExcludes) {
				matched = append(matched, candidate)
			}
		}
	}

	sort.Strings(matched)
	fs.Add(matched...)
	return fs, nil
}

func isExcluded(candidate string, excludes []string) bool {
	for _, exclude := range excludes {
		if ok, _ := doublestar.Match(exclude, candidate); ok {
			return true
		}
		// "**/CVS/**" must also match a top level "CVS/Entries"
		if ok, _ := doublestar.Match(strings.TrimPrefix(exclude, "**/"), candidate); ok {
			return true
		}
	}
	return false
}

// Add appends paths to the set.
func (fs *FileSet) Add(files ...string) {
	for _, f := range files {
		normalized := fs.normalize(f)
		if normalized == "" || normalized == "." {
			continue
		}
		fs.files.Add(normalized)
	}
}

func (fs *FileSet) normalize(file string) string {
	file = filepath.ToSlash(strings.TrimSpace(file))
	if filepath.IsAbs(file) && fs.BaseDir != "" {
		if rel, err := filepath.Rel(fs.BaseDir, filepath.FromSlash(file)); err == nil && !strings.HasPrefix(rel, "..") {
			file = filepath.ToSlash(rel)
		}
	}
	return path.Clean(file)
}

// Files returns the relative paths in insertion order.
func (fs *FileSet) Files() []string {
	if fs == nil || fs.files == nil {
		return nil
	}
	values := fs.files.Values()
	result := make([]string, 0, len(values))
	for _, v := range values {
		result = append(result, v.(string))
	}
	return result
}

// IsEmpty reports whether no explicit file was given.
func (fs *FileSet) IsEmpty() bool {
	return fs == nil || fs.files == nil || fs.files.Size() == 0
}

// Contains reports whether the relative path is part of the set.
func (fs *FileSet) Contains(file string) bool {
	if fs.IsEmpty() {
		return false
	}
	return fs.files.Contains(fs.normalize(file))
}

// AbsolutePaths resolves every file against the base directory.
func (fs *FileSet) AbsolutePaths() []string {
	files := fs.Files()
	result := make([]string, 0, len(files))
	for _, f := range files {
		result = append(result, filepath.Join(fs.BaseDir, filepath.FromSlash(f)))
	}
	return result
}

// PathsOrDot returns the files, or "." when the set denotes the whole tree.
func (fs *FileSet) PathsOrDot() []string {
	if fs.IsEmpty() {
		return []string{"."}
	}
	return fs.Files()
}

func (fs *FileSet) String() string {
	return fmt.Sprintf("basedir=%s files=%v", fs.BaseDir, fs.Files())
}
