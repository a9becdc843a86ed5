package bazaar

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

var supportedSchemes = []string{"bzr", "bzr+ssh", "sftp", "ftp", "http", "https", "file"}

// Repository is the descriptor of a Bazaar branch.
type Repository struct {
	entities.Credentials
	URL      string
	Protocol string
	Host     string
	Port     string
	Path     string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "bzr|bzr+ssh|sftp|ftp|http(s)|file://..." or an absolute local path.
func ParseRepository(specific, _ string) (entities.ProviderRepository, error) {
	raw := strings.TrimSpace(specific)
	if raw == "" {
		return nil, entities.NewValidationError("The bazaar url cannot be empty.")
	}
	if !strings.Contains(raw, "://") {
		if !filepath.IsAbs(filepath.FromSlash(raw)) {
			return nil, entities.NewValidationError("The bazaar url is not a known protocol nor an absolute path: " + raw)
		}
		return &Repository{URL: raw, Protocol: "file", Path: raw}, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, entities.NewValidationError("Invalid bazaar url: " + raw)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if !lo.Contains(supportedSchemes, scheme) {
		return nil, entities.NewValidationError("The bazaar protocol '" + parsed.Scheme + "' is not supported.")
	}
	if scheme != "file" && parsed.Hostname() == "" {
		return nil, entities.NewValidationError("The bazaar url " + raw + " has no host.")
	}

	repository := &Repository{Protocol: scheme, Host: parsed.Hostname(), Port: parsed.Port(), Path: parsed.Path}
	if parsed.User != nil {
		repository.User = parsed.User.Username()
		repository.Password, _ = parsed.User.Password()
		parsed.User = nil
	}
	repository.URL = parsed.String()
	return repository, nil
}

// RemoteURL is the URL handed to bzr, with the credentials in its userinfo.
func (r *Repository) RemoteURL() string {
	if r.User == "" || r.Protocol == "file" {
		return r.URL
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	parsed.User = url.User(r.User)
	if r.Password != "" {
		parsed.User = url.UserPassword(r.User, r.Password)
	}
	return parsed.String()
}

func (r *Repository) ConnectionURL(string) string {
	if r.User == "" || r.Protocol == "file" {
		return r.URL
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	parsed.User = url.User(r.User)
	return parsed.String()
}

// Of extracts the bazaar descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
