package jazz

import (
	"net/url"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Repository is the descriptor of a Jazz (RTC) repository workspace.
type Repository struct {
	entities.Credentials
	RepositoryURI string
	Protocol      string
	Host          string
	Port          string
	Context       string
	Workspace     string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "[user[;password]@]http(s)://host[:port]/ctx<d>workspace".
func ParseRepository(specific, delimiter string) (entities.ProviderRepository, error) {
	repository := &Repository{}
	rest := specific
	if at := strings.Index(specific, "@http"); at >= 0 {
		repository.User, repository.Password, _ = strings.Cut(specific[:at], ";")
		if repository.User == "" {
			return nil, entities.NewValidationError("The jazz user cannot be empty.")
		}
		rest = specific[at+1:]
	}

	schemeEnd := strings.Index(rest, "://")
	split := strings.LastIndex(rest, delimiter)
	if schemeEnd < 0 || split <= schemeEnd+2 {
		return nil, entities.NewValidationError("The jazz url must be 'http(s)://host[:port]/context" + delimiter + "workspace': " + specific)
	}
	repository.RepositoryURI = rest[:split]
	repository.Workspace = rest[split+len(delimiter):]
	if repository.Workspace == "" {
		return nil, entities.NewValidationError("The jazz workspace cannot be empty.")
	}

	parsed, err := url.Parse(repository.RepositoryURI)
	if err != nil {
		return nil, entities.NewValidationError("Invalid jazz repository url: " + repository.RepositoryURI)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, entities.NewValidationError("The jazz protocol must be http or https, got '" + parsed.Scheme + "'.")
	}
	if parsed.Hostname() == "" {
		return nil, entities.NewValidationError("The jazz url has no host: " + specific)
	}
	repository.Protocol = parsed.Scheme
	repository.Host = parsed.Hostname()
	repository.Port = parsed.Port()
	repository.Context = strings.Trim(parsed.Path, "/")
	return repository, nil
}

func (r *Repository) ConnectionURL(delimiter string) string {
	prefix := ""
	if r.User != "" {
		prefix = r.User + "@"
	}
	return prefix + r.RepositoryURI + delimiter + r.Workspace
}

// Of extracts the jazz descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
