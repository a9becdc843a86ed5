package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ManifestName is the bookkeeping file written into a checkout.
const ManifestName = ".scmforge-local"

// Entry is the state of a file when it was last copied from or to the repository.
type Entry struct {
	Size    int64 `yaml:"size"`
	ModTime int64 `yaml:"mtime"`
}

// Manifest records the checked out files and the pending adds and removes.
type Manifest struct {
	Source  string           `yaml:"source"`
	Files   map[string]Entry `yaml:"files"`
	Added   []string         `yaml:"added,omitempty"`
	Removed []string         `yaml:"removed,omitempty"`
}

func NewManifest(source string) *Manifest {
	return &Manifest{Source: source, Files: make(map[string]Entry)}
}

// LoadManifest reads the manifest of a checkout.
func LoadManifest(baseDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a local checkout (no %s)", baseDir, ManifestName)
	}
	if err != nil {
		return nil, err
	}
	manifest := NewManifest("")
	if err = yaml.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("reading %s: %w", ManifestName, err)
	}
	if manifest.Files == nil {
		manifest.Files = make(map[string]Entry)
	}
	return manifest, nil
}

// Save writes the manifest into the checkout.
func (m *Manifest) Save(baseDir string) error {
	sort.Strings(m.Added)
	sort.Strings(m.Removed)
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(baseDir, ManifestName), data, 0o644)
}

// Record stores the state of a file as it is on disk.
func (m *Manifest) Record(path string, info os.FileInfo) {
	m.Files[path] = Entry{Size: info.Size(), ModTime: info.ModTime().Unix()}
}

// Changed reports whether a file on disk differs from its recorded state.
func (m *Manifest) Changed(path string, info os.FileInfo) bool {
	entry, ok := m.Files[path]
	return !ok || entry.Size != info.Size() || entry.ModTime != info.ModTime().Unix()
}

func (m *Manifest) MarkAdded(path string) {
	m.Added = lo.Uniq(append(m.Added, path))
	m.Removed = lo.Without(m.Removed, path)
}

func (m *Manifest) MarkRemoved(path string) {
	m.Removed = lo.Uniq(append(m.Removed, path))
	m.Added = lo.Without(m.Added, path)
}

// Forget drops a file from the manifest.
func (m *Manifest) Forget(path string) {
	delete(m.Files, path)
	m.Added = lo.Without(m.Added, path)
	m.Removed = lo.Without(m.Removed, path)
}

// Paths lists the recorded files in order.
func (m *Manifest) Paths() []string {
	paths := lo.Keys(m.Files)
	sort.Strings(paths)
	return paths
}
