package perforce

import (
	"strconv"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Repository is the descriptor of a depot path on a Perforce server.
type Repository struct {
	entities.Credentials
	Host string
	Port int
	Path string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "[user[:password]@][host[:port]:]//depot/path". Without a host the
// P4PORT of the environment applies.
func ParseRepository(specific, _ string) (entities.ProviderRepository, error) {
	start := strings.Index(specific, "//")
	if start < 0 {
		return nil, entities.NewValidationError("The perforce path must start with '//', got '" + specific + "'.")
	}
	repository := &Repository{Path: strings.TrimSuffix(specific[start:], "/")}
	if strings.Contains(repository.Path, "...") {
		return nil, entities.NewValidationError("The perforce path cannot contain wildcards.")
	}
	if len(repository.Path) <= 2 {
		return nil, entities.NewValidationError("The perforce depot path cannot be empty.")
	}

	prefix := specific[:start]
	if prefix == "" {
		return repository, nil
	}
	switch {
	case strings.HasSuffix(prefix, ":"):
		prefix = strings.TrimSuffix(prefix, ":")
	case !strings.HasSuffix(prefix, "@"):
		return nil, entities.NewValidationError("The perforce server must be followed by ':', got '" + prefix + "'.")
	}

	server := prefix
	if at := strings.LastIndex(prefix, "@"); at >= 0 {
		userInfo := prefix[:at]
		server = prefix[at+1:]
		repository.User, repository.Password, _ = strings.Cut(userInfo, ":")
		if repository.User == "" {
			return nil, entities.NewValidationError("The perforce user cannot be empty.")
		}
	}
	if server == "" {
		return repository, nil
	}

	host, port, hasPort := strings.Cut(server, ":")
	if host == "" {
		return nil, entities.NewValidationError("The perforce host cannot be empty.")
	}
	repository.Host = host
	if hasPort {
		number, err := strconv.Atoi(port)
		if err != nil || number <= 0 {
			return nil, entities.NewValidationError("The perforce port must be a number, got '" + port + "'.")
		}
		repository.Port = number
	}
	return repository, nil
}

// P4Port renders the P4PORT value, or "" to use the environment.
func (r *Repository) P4Port() string {
	if r.Host == "" {
		return ""
	}
	if r.Port > 0 {
		return r.Host + ":" + strconv.Itoa(r.Port)
	}
	return r.Host
}

// View is the depot path selecting every file below the repository path.
func (r *Repository) View() string {
	return r.Path + "/..."
}

func (r *Repository) ConnectionURL(string) string {
	var b strings.Builder
	if r.User != "" {
		b.WriteString(r.User + "@")
	}
	if port := r.P4Port(); port != "" {
		b.WriteString(port + ":")
	}
	b.WriteString(r.Path)
	return b.String()
}

// Of extracts the perforce descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
