package clearcase

import (
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

const loadPrefix = "load "

// Repository is the descriptor of a ClearCase snapshot view: either a config spec file or a
// single load rule.
type Repository struct {
	entities.Credentials
	ViewName       string
	ConfigSpecFile string
	LoadDirectory  string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "[view<d>](configspec-file|load <dir>)".
func ParseRepository(specific, delimiter string) (entities.ProviderRepository, error) {
	if strings.TrimSpace(specific) == "" {
		return nil, entities.NewValidationError("The clearcase url must name a config spec or a load rule.")
	}

	repository := &Repository{}
	spec := specific
	tokens := strings.Split(specific, delimiter)
	if len(tokens) > 1 && !strings.HasPrefix(tokens[0], loadPrefix) && !isDriveLetter(tokens[0]) {
		repository.ViewName = tokens[0]
		spec = strings.Join(tokens[1:], delimiter)
	}
	if strings.ContainsAny(repository.ViewName, " \t/\\") {
		return nil, entities.NewValidationError("The clearcase view name '" + repository.ViewName + "' contains invalid characters.")
	}

	if strings.HasPrefix(spec, loadPrefix) {
		repository.LoadDirectory = strings.TrimSpace(strings.TrimPrefix(spec, loadPrefix))
		if repository.LoadDirectory == "" {
			return nil, entities.NewValidationError("The clearcase load rule needs a directory.")
		}
		return repository, nil
	}
	repository.ConfigSpecFile = strings.TrimSpace(spec)
	if repository.ConfigSpecFile == "" {
		return nil, entities.NewValidationError("The clearcase config spec file cannot be empty.")
	}
	return repository, nil
}

func isDriveLetter(token string) bool {
	return len(token) == 1 && ('a' <= token[0] && token[0] <= 'z' || 'A' <= token[0] && token[0] <= 'Z')
}

// ConfigSpec renders the generated config spec of a load rule repository.
func (r *Repository) ConfigSpec(version *entities.ScmVersion) string {
	selector := "/main/LATEST"
	if version.IsSet() {
		selector = version.Name
	}
	return "element * CHECKEDOUT\nelement * " + selector + "\nload " + r.LoadDirectory + "\n"
}

func (r *Repository) ConnectionURL(delimiter string) string {
	spec := r.ConfigSpecFile
	if r.LoadDirectory != "" {
		spec = loadPrefix + r.LoadDirectory
	}
	if r.ViewName == "" {
		return spec
	}
	return r.ViewName + delimiter + spec
}

// Of extracts the clearcase descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
