package vss

import (
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Repository is the descriptor of a Visual SourceSafe project.
type Repository struct {
	entities.Credentials
	VssDir  string
	Project string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "user[<d>password]@vssdir<d>$/project".
func ParseRepository(specific, delimiter string) (entities.ProviderRepository, error) {
	at := strings.Index(specific, "@")
	if at < 0 {
		return nil, entities.NewValidationError("The vss url must start with the user followed by '@': " + specific)
	}
	repository := &Repository{}
	repository.User, repository.Password, _ = strings.Cut(specific[:at], delimiter)
	if repository.User == "" {
		return nil, entities.NewValidationError("The vss user cannot be empty.")
	}

	rest := specific[at+1:]
	split := strings.LastIndex(rest, delimiter+"$")
	if split < 0 {
		return nil, entities.NewValidationError("The vss url must end with a '$/' project: " + specific)
	}
	repository.VssDir = rest[:split]
	repository.Project = strings.TrimSuffix(rest[split+len(delimiter):], "/")
	if repository.VssDir == "" {
		return nil, entities.NewValidationError("The vss database directory cannot be empty.")
	}
	if !strings.HasPrefix(repository.Project, "$/") && repository.Project != "$" {
		return nil, entities.NewValidationError("The vss project must start with '$/', got '" + repository.Project + "'.")
	}
	return repository, nil
}

// Item maps a base dir relative path into the project.
func (r *Repository) Item(path string) string {
	return r.Project + "/" + strings.TrimPrefix(path, "/")
}

func (r *Repository) ConnectionURL(delimiter string) string {
	return r.User + "@" + r.VssDir + delimiter + r.Project
}

// Of extracts the vss descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
