package cvs

import (
	"os/user"
	"strconv"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Access methods understood in a CVS connection string.
const (
	MethodLocal   = "local"
	MethodFork    = "fork"
	MethodLServer = "lserver"
	MethodPServer = "pserver"
	MethodExt     = "ext"
	MethodSSPI    = "sspi"
)

// Repository is the descriptor of a CVS module.
type Repository struct {
	entities.Credentials
	Method string
	Host   string
	Port   int
	Path   string
	Module string

	explicitUser bool
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "<method><d>[user[<d>password]@]host[<d>port]<d>/path<d>module", or
// "local<d>/path<d>module".
func ParseRepository(specific, delimiter string) (entities.ProviderRepository, error) {
	tokens := strings.Split(specific, delimiter)
	if len(tokens) < 3 {
		return nil, entities.NewValidationError("The connection string contains too few tokens.")
	}

	repository := &Repository{Method: strings.ToLower(tokens[0]), Module: tokens[len(tokens)-1]}
	if repository.Module == "" {
		return nil, entities.NewValidationError("The module name cannot be empty.")
	}

	switch repository.Method {
	case MethodLocal, MethodFork:
		if len(tokens) != 3 {
			return nil, entities.NewValidationError("The connection string contains too many tokens for the '" + repository.Method + "' method.")
		}
		repository.Path = tokens[1]
		if repository.Path == "" {
			return nil, entities.NewValidationError("The repository path cannot be empty.")
		}
		return repository, nil
	case MethodLServer, MethodPServer, MethodExt, MethodSSPI:
	default:
		return nil, entities.NewValidationError("Unknown access method: '" + tokens[0] + "'.")
	}

	if len(tokens) < 4 {
		return nil, entities.NewValidationError("The connection string contains too few tokens.")
	}
	repository.Path = tokens[len(tokens)-2]
	if !strings.HasPrefix(repository.Path, "/") {
		return nil, entities.NewValidationError("The repository path must be absolute, got '" + repository.Path + "'.")
	}

	// everything between the method and the path is [user[:password]@]host[:port]
	if err := repository.parseServer(strings.Join(tokens[1:len(tokens)-2], delimiter), delimiter); err != nil {
		return nil, err
	}
	return repository, nil
}

func (r *Repository) parseServer(server, delimiter string) error {
	userInfo, hostPort := "", server
	if at := strings.LastIndex(server, "@"); at >= 0 {
		userInfo, hostPort = server[:at], server[at+1:]
	}
	if userInfo != "" {
		name, password, _ := strings.Cut(userInfo, delimiter)
		r.User, r.Password, r.explicitUser = name, password, true
	}

	host, port, hasPort := strings.Cut(hostPort, delimiter)
	if host == "" {
		return entities.NewValidationError("The host name cannot be empty.")
	}
	r.Host = host
	if hasPort {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 {
			return entities.NewValidationError("The port must be a positive number, got '" + port + "'.")
		}
		r.Port = n
	}

	if r.User == "" {
		r.User = systemLogin()
	}
	return nil
}

func systemLogin() string {
	if current, err := user.Current(); err == nil {
		return current.Username
	}
	return ""
}

// IsLocal reports whether the repository is accessed without a server.
func (r *Repository) IsLocal() bool {
	return r.Method == MethodLocal || r.Method == MethodFork
}

// CvsRoot renders the CVSROOT, ":method:user@host:[port]/path". The password is
// included for pserver so that no ~/.cvspass entry is needed.
func (r *Repository) CvsRoot() string {
	if r.IsLocal() {
		return ":" + r.Method + ":" + r.Path
	}
	var b strings.Builder
	b.WriteString(":" + r.Method + ":")
	if r.User != "" {
		b.WriteString(r.User)
		if r.Password != "" && r.Method == MethodPServer {
			b.WriteString(":" + r.Password)
		}
		b.WriteString("@")
	}
	b.WriteString(r.Host + ":")
	if r.Port > 0 {
		b.WriteString(strconv.Itoa(r.Port))
	}
	b.WriteString(r.Path)
	return b.String()
}

// ConnectionURL renders the connection string back; the password is never included.
func (r *Repository) ConnectionURL(delimiter string) string {
	parts := []string{r.Method}
	if r.IsLocal() {
		return strings.Join(append(parts, r.Path, r.Module), delimiter)
	}
	server := r.Host
	if r.explicitUser && r.User != "" {
		server = r.User + "@" + r.Host
	}
	parts = append(parts, server)
	if r.Port > 0 {
		parts = append(parts, strconv.Itoa(r.Port))
	}
	return strings.Join(append(parts, r.Path, r.Module), delimiter)
}

// Of extracts the cvs descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
