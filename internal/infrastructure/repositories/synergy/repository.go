package synergy

import (
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Repository is the descriptor of a Synergy (ccm) project.
type Repository struct {
	entities.Credentials
	Project string
	// Delimiter separates the project name from its version, usually "~" or "-".
	Delimiter string
	Version   string
	Release   string
	Purpose   string
	Engine    string
	Database  string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads
// "project<d>delimiter<d>version<d>release<d>purpose<d>user<d>password[<d>engine<d>database]".
func ParseRepository(specific, delimiter string) (entities.ProviderRepository, error) {
	parts := strings.Split(specific, delimiter)
	if len(parts) != 7 && len(parts) < 9 {
		return nil, entities.NewValidationError(
			"The synergy url must be 'project" + delimiter + "delimiter" + delimiter + "version" + delimiter +
				"release" + delimiter + "purpose" + delimiter + "user" + delimiter + "password[" + delimiter +
				"engine" + delimiter + "database]': " + specific)
	}

	repository := &Repository{
		Project:   parts[0],
		Delimiter: parts[1],
		Version:   parts[2],
		Release:   parts[3],
		Purpose:   parts[4],
	}
	repository.User, repository.Password = parts[5], parts[6]
	if len(parts) >= 9 {
		// the engine is usually an http url and may contain the delimiter itself
		repository.Engine = strings.Join(parts[7:len(parts)-1], delimiter)
		repository.Database = parts[len(parts)-1]
	}

	switch {
	case repository.Project == "":
		return nil, entities.NewValidationError("The synergy project name cannot be empty.")
	case repository.Delimiter == "":
		return nil, entities.NewValidationError("The synergy project delimiter cannot be empty.")
	case repository.Version == "":
		return nil, entities.NewValidationError("The synergy project version cannot be empty.")
	case repository.User == "":
		return nil, entities.NewValidationError("The synergy user cannot be empty.")
	}
	return repository, nil
}

// ProjectSpec is the two part name "project~version".
func (r *Repository) ProjectSpec() string {
	return r.Project + r.Delimiter + r.Version
}

func (r *Repository) ConnectionURL(delimiter string) string {
	parts := []string{r.Project, r.Delimiter, r.Version, r.Release, r.Purpose, r.User, ""}
	if r.Engine != "" || r.Database != "" {
		parts = append(parts, r.Engine, r.Database)
	}
	return strings.Join(parts, delimiter)
}

// Of extracts the synergy descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{Delimiter: "~"}
}
