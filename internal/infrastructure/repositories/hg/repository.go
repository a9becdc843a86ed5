package hg

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

var supportedSchemes = []string{"http", "https", "ssh", "file"}

// Repository is the descriptor of a Mercurial repository, remote or local.
type Repository struct {
	entities.Credentials
	URL      string
	Protocol string
	Host     string
	Path     string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "http(s)|ssh|file://..." or a plain local path.
func ParseRepository(specific, _ string) (entities.ProviderRepository, error) {
	raw := strings.TrimSpace(specific)
	if raw == "" {
		return nil, entities.NewValidationError("The mercurial repository url cannot be empty.")
	}

	if !strings.Contains(raw, "://") {
		if !filepath.IsAbs(filepath.FromSlash(raw)) {
			return nil, entities.NewValidationError("The local mercurial path must be absolute, got '" + raw + "'.")
		}
		return &Repository{URL: raw, Protocol: "file", Path: raw}, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, entities.NewValidationError("Invalid mercurial url: " + raw)
	}
	if !lo.Contains(supportedSchemes, strings.ToLower(parsed.Scheme)) {
		return nil, entities.NewValidationError("Unsupported mercurial protocol '" + parsed.Scheme + "' in url " + raw)
	}
	if parsed.Scheme != "file" && parsed.Host == "" {
		return nil, entities.NewValidationError("The mercurial url " + raw + " has no host.")
	}

	repository := &Repository{Protocol: strings.ToLower(parsed.Scheme), Host: parsed.Host, Path: parsed.Path}
	if parsed.User != nil {
		repository.User = parsed.User.Username()
		repository.Password, _ = parsed.User.Password()
		parsed.User = nil
	}
	repository.URL = parsed.String()
	return repository, nil
}

// RemoteURL is the URL handed to hg, carrying the credentials for http(s).
func (r *Repository) RemoteURL() string {
	if r.User == "" || (r.Protocol != "http" && r.Protocol != "https" && r.Protocol != "ssh") {
		return r.URL
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	if r.Password != "" && r.Protocol != "ssh" {
		parsed.User = url.UserPassword(r.User, r.Password)
	} else {
		parsed.User = url.User(r.User)
	}
	return parsed.String()
}

// ConnectionURL renders the URL with the user but never the password.
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

// Of extracts the hg descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
