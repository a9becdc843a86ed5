package accurev

import (
	"strconv"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// DefaultPort is the port of an AccuRev server when the URL names none.
const DefaultPort = 5050

// Repository is the descriptor of an AccuRev stream, optionally narrowed to a project path.
type Repository struct {
	entities.Credentials
	Host        string
	Port        int
	Stream      string
	ProjectPath string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "[user[/password]@host[:port]]/stream[/project/path]".
func ParseRepository(specific, _ string) (entities.ProviderRepository, error) {
	repository := &Repository{}
	rest := specific
	if at := strings.Index(specific, "@"); at >= 0 {
		repository.User, repository.Password, _ = strings.Cut(specific[:at], "/")
		if repository.User == "" {
			return nil, entities.NewValidationError("The accurev user cannot be empty.")
		}
		server, path, found := strings.Cut(specific[at+1:], "/")
		if !found {
			return nil, entities.NewValidationError("The accurev url must name a stream: " + specific)
		}
		host, port, hasPort := strings.Cut(server, ":")
		if host == "" {
			return nil, entities.NewValidationError("The accurev host cannot be empty.")
		}
		repository.Host, repository.Port = host, DefaultPort
		if hasPort {
			number, err := strconv.Atoi(port)
			if err != nil || number <= 0 {
				return nil, entities.NewValidationError("The accurev port must be a number, got '" + port + "'.")
			}
			repository.Port = number
		}
		rest = "/" + path
	}

	if !strings.HasPrefix(rest, "/") {
		return nil, entities.NewValidationError("The accurev stream must start with '/': " + specific)
	}
	stream, project, _ := strings.Cut(strings.TrimPrefix(rest, "/"), "/")
	if stream == "" {
		return nil, entities.NewValidationError("The accurev stream cannot be empty.")
	}
	repository.Stream = stream
	repository.ProjectPath = strings.Trim(project, "/")
	return repository, nil
}

// Server renders the "-H" value, or "" for the configured default server.
func (r *Repository) Server() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + strconv.Itoa(r.Port)
}

func (r *Repository) ConnectionURL(string) string {
	var b strings.Builder
	if r.Host != "" {
		if r.User != "" {
			b.WriteString(r.User + "@")
		}
		b.WriteString(r.Server())
	}
	b.WriteString("/" + r.Stream)
	if r.ProjectPath != "" {
		b.WriteString("/" + r.ProjectPath)
	}
	return b.String()
}

// Of extracts the accurev descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
