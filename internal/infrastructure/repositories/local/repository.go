package local

import (
	"path/filepath"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Repository is the descriptor of a directory tree used as a repository.
type Repository struct {
	entities.Credentials
	Root   string
	Module string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "root<d>module", as in "scm:local|/repo|module".
func ParseRepository(specific, delimiter string) (entities.ProviderRepository, error) {
	split := strings.LastIndex(specific, delimiter)
	if split <= 0 {
		return nil, entities.NewValidationError("The local url must be 'root" + delimiter + "module': " + specific)
	}
	repository := &Repository{Root: specific[:split], Module: specific[split+len(delimiter):]}
	if repository.Module == "" {
		return nil, entities.NewValidationError("The local module cannot be empty.")
	}
	if strings.ContainsAny(repository.Module, `/\`) || repository.Module == ".." {
		return nil, entities.NewValidationError("The local module must be a single directory name, got '" + repository.Module + "'.")
	}
	if !filepath.IsAbs(repository.Root) && !isDrivePath(repository.Root) {
		return nil, entities.NewValidationError("The local root must be an absolute path, got '" + repository.Root + "'.")
	}
	return repository, nil
}

func isDrivePath(path string) bool {
	return len(path) > 2 && path[1] == ':' && (path[2] == '\\' || path[2] == '/')
}

// Source is the module directory inside the root.
func (r *Repository) Source() string {
	return filepath.Join(r.Root, r.Module)
}

// TagDir is where a tag of the module is kept.
func (r *Repository) TagDir(name string) string {
	return filepath.Join(r.Root, "tags", name, r.Module)
}

// SourceOf resolves the tree of a version: a tag directory for tags, the module otherwise.
func (r *Repository) SourceOf(version *entities.ScmVersion) string {
	if version.IsTag() {
		return r.TagDir(version.Name)
	}
	return r.Source()
}

func (r *Repository) ConnectionURL(delimiter string) string {
	return r.Root + delimiter + r.Module
}

// Of extracts the local descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
