package tfs

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Repository is the descriptor of a Team Foundation Server workspace mapping.
type Repository struct {
	entities.Credentials
	ServerURL string
	// CheckinPolicies is false when the checkin policies are overridden.
	CheckinPolicies bool
	policiesSet     bool
	Workspace       string
	ServerPath      string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads
// "[user[;password]@]http(s)://server[:port][/path]<d>[checkinPolicies<d>]workspace<d>$/path".
func ParseRepository(specific, delimiter string) (entities.ProviderRepository, error) {
	split := strings.LastIndex(specific, delimiter+"$/")
	if split < 0 {
		return nil, entities.NewValidationError("The tfs url must end with a '$/' server path: " + specific)
	}
	repository := &Repository{ServerPath: strings.TrimSuffix(specific[split+len(delimiter):], "/"), CheckinPolicies: true}
	if repository.ServerPath == "" || repository.ServerPath == "$" {
		repository.ServerPath = "$/"
	}

	rest := specific[:split]
	ws := strings.LastIndex(rest, delimiter)
	if ws < 0 || rest[ws+len(delimiter):] == "" {
		return nil, entities.NewValidationError("The tfs workspace cannot be empty.")
	}
	repository.Workspace = rest[ws+len(delimiter):]
	rest = rest[:ws]

	// an optional boolean, possibly empty as in "http://server:8080::workspace:$/path"
	if i := strings.LastIndex(rest, delimiter); i >= 0 && !strings.HasSuffix(rest[:i+len(delimiter)], "://") {
		if flag := rest[i+len(delimiter):]; flag == "" || isBool(flag) {
			if flag != "" {
				repository.CheckinPolicies, _ = strconv.ParseBool(flag)
				repository.policiesSet = true
			}
			rest = rest[:i]
		}
	}

	if at := strings.Index(rest, "@http"); at >= 0 {
		repository.User, repository.Password, _ = strings.Cut(rest[:at], ";")
		if repository.User == "" {
			return nil, entities.NewValidationError("The tfs user cannot be empty.")
		}
		rest = rest[at+1:]
	}

	parsed, err := url.Parse(rest)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Hostname() == "" {
		return nil, entities.NewValidationError("The tfs server must be an http(s) url, got '" + rest + "'.")
	}
	repository.ServerURL = rest
	return repository, nil
}

// isBool accepts only the words, so that a port such as "1" is not taken for a flag.
func isBool(value string) bool {
	return strings.EqualFold(value, "true") || strings.EqualFold(value, "false")
}

func (r *Repository) ConnectionURL(delimiter string) string {
	prefix := ""
	if r.User != "" {
		prefix = r.User + "@"
	}
	policies := ""
	if r.policiesSet {
		policies = strconv.FormatBool(r.CheckinPolicies)
	}
	return prefix + r.ServerURL + delimiter + policies + delimiter + r.Workspace + delimiter + r.ServerPath
}

// Item maps a base dir relative path below the server path.
func (r *Repository) Item(path string) string {
	return strings.TrimSuffix(r.ServerPath, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Of extracts the tfs descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{ServerPath: "$/", CheckinPolicies: true}
}
