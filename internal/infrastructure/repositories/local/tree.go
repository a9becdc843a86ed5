package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	logger "github.com/sirupsen/logrus"
	"github.com/termie/go-shutil"
)

// IgnoreFile holds extra gitignore style rules at the top of a module.
const IgnoreFile = ".scmforgeignore"

// defaultIgnores keep SCM metadata and the manifest out of every copy.
var defaultIgnores = []string{
	".git/", ".svn/", "CVS/", ".hg/", ".bzr/", ".jazz5/", "$tf/", ManifestName,
}

// Tree is a directory walked and copied under ignore rules.
type Tree struct {
	Dir    string
	ignore *ignore.GitIgnore
}

// NewTree compiles the default rules, the extra lines and the IgnoreFile of dir if present.
func NewTree(dir string, extra ...string) (*Tree, error) {
	lines := append(append([]string{}, defaultIgnores...), extra...)
	rules := filepath.Join(dir, IgnoreFile)
	if _, err := os.Stat(rules); err == nil {
		compiled, compileErr := ignore.CompileIgnoreFileAndLines(rules, lines...)
		if compileErr != nil {
			return nil, fmt.Errorf("reading %s: %w", rules, compileErr)
		}
		return &Tree{Dir: dir, ignore: compiled}, nil
	}
	return &Tree{Dir: dir, ignore: ignore.CompileIgnoreLines(lines...)}, nil
}

// Ignored reports whether a slash separated relative path is excluded.
func (t *Tree) Ignored(path string, dir bool) bool {
	if path == IgnoreFile {
		return true
	}
	if dir {
		path += "/"
	}
	return t.ignore.MatchesPath(path)
}

// Files lists the relative paths of the regular files, sorted.
func (t *Tree) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(t.Dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == t.Dir {
			return nil
		}
		rel, relErr := filepath.Rel(t.Dir, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if t.Ignored(rel, entry.IsDir()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s does not exist: %w", t.Dir, err)
	}
	sort.Strings(files)
	return files, err
}

// Stat returns the file info of a relative path.
func (t *Tree) Stat(path string) (os.FileInfo, error) {
	return os.Stat(t.Abs(path))
}

func (t *Tree) Abs(path string) string {
	return filepath.Join(t.Dir, filepath.FromSlash(path))
}

// CopyFile copies one relative path into another tree, keeping the modification time so
// that the manifest can tell later edits apart.
func (t *Tree) CopyFile(path string, to *Tree) (os.FileInfo, error) {
	source, target := t.Abs(path), to.Abs(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, err
	}
	if err := shutil.CopyFile(source, target, true); err != nil {
		return nil, fmt.Errorf("copying %s: %w", path, err)
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	if err = os.Chtimes(target, info.ModTime(), info.ModTime()); err != nil {
		return nil, err
	}
	return os.Stat(target)
}

// CopyTo copies the whole tree. A missing destination is created with shutil.CopyTree;
// an existing one receives the files one by one.
func (t *Tree) CopyTo(dir string) ([]string, error) {
	files, err := t.Files()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(dir); errors.Is(statErr, fs.ErrNotExist) {
		if err = os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
			return nil, err
		}
		options := &shutil.CopyTreeOptions{
			Symlinks:     true,
			CopyFunction: copyKeepingTime,
			Ignore:       t.ignoreFunc(),
		}
		if err = shutil.CopyTree(t.Dir, dir, options); err != nil {
			return nil, fmt.Errorf("copying %s to %s: %w", t.Dir, dir, err)
		}
		return files, nil
	}

	target := &Tree{Dir: dir, ignore: t.ignore}
	for _, file := range files {
		if _, err = t.CopyFile(file, target); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// copyKeepingTime is shutil.Copy plus the modification time of the source.
func copyKeepingTime(source, target string, followSymlinks bool) (string, error) {
	target, err := shutil.Copy(source, target, followSymlinks)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(source)
	if err != nil {
		return "", err
	}
	return target, os.Chtimes(target, info.ModTime(), info.ModTime())
}

// ignoreFunc adapts the rules to the per-directory callback of shutil.CopyTree.
func (t *Tree) ignoreFunc() func(string, []os.FileInfo) []string {
	return func(dir string, entries []os.FileInfo) []string {
		rel, err := filepath.Rel(t.Dir, dir)
		if err != nil {
			logger.Warnf("Cannot apply the ignore rules below %s: %v", dir, err)
			return nil
		}
		prefix := ""
		if rel != "." {
			prefix = strings.TrimSuffix(filepath.ToSlash(rel), "/") + "/"
		}
		var ignored []string
		for _, entry := range entries {
			if t.Ignored(prefix+entry.Name(), entry.IsDir()) {
				ignored = append(ignored, entry.Name())
			}
		}
		return ignored
	}
}
