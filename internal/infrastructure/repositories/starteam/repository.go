package starteam

import (
	"strconv"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Repository is the descriptor of a StarTeam view or folder.
type Repository struct {
	entities.Credentials
	Host    string
	Port    int
	Project string
	View    string
	Folder  string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "[user[:password]@]host:port/project/view[/folder]".
func ParseRepository(specific, _ string) (entities.ProviderRepository, error) {
	server, path, found := strings.Cut(specific, "/")
	if !found {
		return nil, entities.NewValidationError("The starteam url must contain a project and a view: " + specific)
	}

	repository := &Repository{}
	if at := strings.LastIndex(server, "@"); at >= 0 {
		repository.User, repository.Password, _ = strings.Cut(server[:at], ":")
		server = server[at+1:]
		if repository.User == "" {
			return nil, entities.NewValidationError("The starteam user cannot be empty.")
		}
	}

	host, port, hasPort := strings.Cut(server, ":")
	if host == "" {
		return nil, entities.NewValidationError("The starteam host cannot be empty.")
	}
	if !hasPort {
		return nil, entities.NewValidationError("The starteam url must contain a port: " + specific)
	}
	number, err := strconv.Atoi(port)
	if err != nil || number <= 0 {
		return nil, entities.NewValidationError("The starteam port must be a number, got '" + port + "'.")
	}
	repository.Host, repository.Port = host, number

	segments := strings.SplitN(strings.Trim(path, "/"), "/", 3)
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return nil, entities.NewValidationError("The starteam url must contain a project and a view: " + specific)
	}
	repository.Project, repository.View = segments[0], segments[1]
	if len(segments) == 3 {
		repository.Folder = segments[2]
	}
	return repository, nil
}

func (r *Repository) location() string {
	location := r.Host + ":" + strconv.Itoa(r.Port) + "/" + r.Project + "/" + r.View
	if r.Folder != "" {
		location += "/" + r.Folder
	}
	return location
}

// ProjectURL is the "-p" argument of stcmd, carrying the credentials.
func (r *Repository) ProjectURL(user, password string) string {
	switch {
	case user != "" && password != "":
		return user + ":" + password + "@" + r.location()
	case user != "":
		return user + "@" + r.location()
	default:
		return r.location()
	}
}

func (r *Repository) ConnectionURL(string) string {
	if r.User == "" {
		return r.location()
	}
	return r.User + "@" + r.location()
}

// Of extracts the starteam descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
