package integrity

import (
	"strconv"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

const DefaultPort = 7001

// Repository is the descriptor of an Integrity (MKS) project.
type Repository struct {
	entities.Credentials
	Host       string
	Port       int
	ConfigPath string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "user[/password]@host[:port]<d>#/project/path".
func ParseRepository(specific, delimiter string) (entities.ProviderRepository, error) {
	split := strings.LastIndex(specific, delimiter+"#")
	if split < 0 {
		return nil, entities.NewValidationError("The integrity url must end with a '#' configuration path: " + specific)
	}
	server, configPath := specific[:split], specific[split+len(delimiter):]
	if strings.TrimLeft(configPath, "#/") == "" {
		return nil, entities.NewValidationError("The integrity configuration path cannot be empty.")
	}

	at := strings.LastIndex(server, "@")
	if at < 0 {
		return nil, entities.NewValidationError("The integrity url must contain 'user@host': " + specific)
	}
	repository := &Repository{ConfigPath: configPath, Port: DefaultPort}
	repository.User, repository.Password, _ = strings.Cut(server[:at], "/")
	if repository.User == "" {
		return nil, entities.NewValidationError("The integrity user cannot be empty.")
	}

	host, port, hasPort := strings.Cut(server[at+1:], ":")
	if host == "" {
		return nil, entities.NewValidationError("The integrity host cannot be empty.")
	}
	repository.Host = host
	if hasPort {
		value, err := strconv.Atoi(port)
		if err != nil || value <= 0 {
			return nil, entities.NewValidationError("The integrity port must be a number, got '" + port + "'.")
		}
		repository.Port = value
	}
	return repository, nil
}

func (r *Repository) ConnectionURL(delimiter string) string {
	return r.User + "@" + r.Host + ":" + strconv.Itoa(r.Port) + delimiter + r.ConfigPath
}

// Of extracts the integrity descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{Port: DefaultPort}
}
