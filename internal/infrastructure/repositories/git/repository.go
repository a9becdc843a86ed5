package git

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

const (
	fetchMarker = "[fetch=]"
	pushMarker  = "[push=]"
)

var (
	supportedProtocols = []string{"file", "http", "https", "ssh", "git", "git+ssh", "ssh+git"}
	scpLikePattern     = regexp.MustCompile(`^(?:([^@/]+)@)?([^:/]+):(.+)$`)
)

// Repository is the descriptor of a git remote. Fetch and push may differ.
type Repository struct {
	entities.Credentials
	FetchURL string
	PushURL  string

	// PushPassword is the password of a separate push url.
	PushPassword string
	Protocol     string
	Host         string
	Path         string
}

var _ entities.ProviderRepository = (*Repository)(nil)

// ParseRepository reads "[fetch=]url[?[push=]url]". The protocol is one of file, http(s),
// ssh, git or the scp-like "user@host:path". Credentials found in the URL are extracted.
func ParseRepository(specific, _ string) (entities.ProviderRepository, error) {
	repository, err := Parse(specific)
	if err != nil {
		return nil, err
	}
	return repository, nil
}

// Parse is ParseRepository returning the concrete type; the embedded backend shares it.
func Parse(specific string) (*Repository, error) {
	if strings.TrimSpace(specific) == "" {
		return nil, entities.NewValidationError("The git repository url cannot be empty.")
	}

	fetch, push := specific, ""
	if strings.HasPrefix(fetch, fetchMarker) || strings.Contains(fetch, "?"+pushMarker) {
		fetch = strings.TrimPrefix(fetch, fetchMarker)
		fetch, push, _ = strings.Cut(fetch, "?")
		push = strings.TrimPrefix(push, pushMarker)
	}
	if push == "" {
		push = fetch
	}

	repository := &Repository{FetchURL: fetch, PushURL: push}
	if err := repository.inspect(fetch); err != nil {
		return nil, err
	}
	if push != fetch {
		pushRepository := &Repository{}
		if err := pushRepository.inspect(push); err != nil {
			return nil, err
		}
		repository.PushPassword = pushRepository.Password
	}
	return repository, nil
}

func (r *Repository) inspect(raw string) error {
	if strings.Contains(raw, "://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return entities.NewValidationError("The git repository url is invalid: " + err.Error())
		}
		if !isSupported(parsed.Scheme) {
			return entities.NewValidationError("The git protocol '" + parsed.Scheme + "' is not supported.")
		}
		r.Protocol = parsed.Scheme
		r.Host = parsed.Host
		r.Path = parsed.Path
		if parsed.User != nil {
			r.User = parsed.User.Username()
			r.Password, _ = parsed.User.Password()
		}
		return nil
	}

	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, ".") || isWindowsPath(raw) {
		r.Protocol = "file"
		r.Path = raw
		return nil
	}

	m := scpLikePattern.FindStringSubmatch(raw)
	if m == nil {
		return entities.NewValidationError("The git repository url '" + raw + "' has no protocol.")
	}
	r.Protocol = "ssh"
	r.User = m[1]
	r.Host = m[2]
	r.Path = m[3]
	return nil
}

func isSupported(protocol string) bool {
	for _, p := range supportedProtocols {
		if p == protocol {
			return true
		}
	}
	return false
}

func isWindowsPath(raw string) bool {
	return len(raw) > 2 && raw[1] == ':' && (raw[2] == '\\' || raw[2] == '/')
}

// ConnectionURL renders the URL back in the form it was given, without passwords.
func (r *Repository) ConnectionURL(_ string) string {
	if r.PushURL == "" || r.PushURL == r.FetchURL {
		return withoutPassword(r.FetchURL)
	}
	return fetchMarker + withoutPassword(r.FetchURL) + "?" + pushMarker + withoutPassword(r.PushURL)
}

func withoutPassword(raw string) string {
	if !strings.Contains(raw, "://") {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.User == nil {
		return raw
	}
	if _, hasPassword := parsed.User.Password(); !hasPassword {
		return raw
	}
	parsed.User = url.User(parsed.User.Username())
	return parsed.String()
}

// Secrets lists the passwords of both urls, decoded and as they are written in the urls.
func (r *Repository) Secrets() []string {
	secrets := []string{r.Password, r.PushPassword}
	for _, raw := range []string{r.FetchURL, r.PushURL} {
		secrets = append(secrets, writtenPassword(raw))
	}
	return lo.Uniq(lo.Filter(secrets, func(s string, _ int) bool { return s != "" }))
}

// writtenPassword is the password of raw exactly as it appears, percent escapes included.
func writtenPassword(raw string) string {
	_, rest, found := strings.Cut(raw, "://")
	if !found {
		return ""
	}
	authority, _, _ := strings.Cut(rest, "/")
	at := strings.LastIndex(authority, "@")
	if at < 0 {
		return ""
	}
	_, password, _ := strings.Cut(authority[:at], ":")
	return password
}

// Of extracts the git descriptor from a request.
func Of(request *entities.CommandRequest) *Repository {
	if request.Repository == nil {
		return &Repository{}
	}
	if repository, ok := request.Repository.Provider.(*Repository); ok {
		return repository
	}
	return &Repository{}
}
