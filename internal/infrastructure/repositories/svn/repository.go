package svn

import (
	"net/url"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

var supportedSchemes = []string{"http", "https", "svn", "file"}

// Repository is the descriptor of a Subversion URL.
type Repository struct {
	entities.Credentials
	URL        string
	Protocol   string
	Host       string
	TagBase    string
	BranchBase string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "http(s)|svn|svn+ssh|file://...". Tag and branch bases default to
// the siblings of a trailing "/trunk".
func ParseRepository(specific, _ string) (entities.ProviderRepository, error) {
	raw := strings.TrimSpace(specific)
	if raw == "" {
		return nil, entities.NewValidationError("The subversion url cannot be empty.")
	}

	parsed, err := url.Parse(raw)
	if err != nil || !strings.Contains(raw, "://") {
		return nil, entities.NewValidationError("Invalid SVN url: " + raw)
	}
	if !isSupported(parsed.Scheme) {
		return nil, entities.NewValidationError("Invalid SVN protocol '" + parsed.Scheme + "' in url " + raw)
	}
	if parsed.Scheme != "file" && parsed.Host == "" {
		return nil, entities.NewValidationError("The SVN url " + raw + " has no host.")
	}

	repository := &Repository{Protocol: parsed.Scheme, Host: parsed.Host}
	if parsed.User != nil {
		repository.User = parsed.User.Username()
		repository.Password, _ = parsed.User.Password()
		parsed.User = nil
	}
	repository.URL = strings.TrimSuffix(parsed.String(), "/")
	repository.TagBase = siblingOfTrunk(repository.URL, "tags")
	repository.BranchBase = siblingOfTrunk(repository.URL, "branches")
	return repository, nil
}

func isSupported(scheme string) bool {
	if strings.HasPrefix(scheme, "svn+") {
		return true
	}
	for _, s := range supportedSchemes {
		if s == scheme {
			return true
		}
	}
	return false
}

func siblingOfTrunk(repositoryURL, sibling string) string {
	if root, found := strings.CutSuffix(repositoryURL, "/trunk"); found {
		return root + "/" + sibling
	}
	return repositoryURL + "/" + sibling
}

// ConnectionURL keeps the user name but never the password.
func (r *Repository) ConnectionURL(_ string) string {
	if r.User == "" {
		return r.URL
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	parsed.User = url.User(r.User)
	return parsed.String()
}

// Of extracts the svn descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
