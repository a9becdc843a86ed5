package entities

import "strings"

const scmURLPrefix = "scm:"

// ScmURL is the generic envelope of an SCM URL: "scm:<type><delimiter><provider specific>".
type ScmURL struct {
	Type             string
	Delimiter        string
	ProviderSpecific string
}

// ValidateScmURL returns the problems found in the envelope. An empty slice means valid.
func ValidateScmURL(url string) []string {
	if url == "" {
		return []string{"The scm url cannot be empty."}
	}
	if !strings.HasPrefix(url, scmURLPrefix) {
		return []string{"The scm url must start with 'scm:'."}
	}
	if len(url) < len(scmURLPrefix)+2 {
		return []string{"The scm url must be at least 6 characters long."}
	}

	rest := url[len(scmURLPrefix):]
	delimiter := detectDelimiter(rest)
	idx := strings.Index(rest, delimiter)
	if idx < 0 {
		return []string{"The scm url does not contain a valid delimiter."}
	}
	if idx == 0 {
		return []string{"The scm url does not contain a valid provider type."}
	}
	return nil
}

// ParseScmURL splits a validated URL into its envelope parts.
func ParseScmURL(url string) (*ScmURL, error) {
	if messages := ValidateScmURL(url); len(messages) > 0 {
		return nil, NewValidationError(messages...)
	}

	rest := url[len(scmURLPrefix):]
	delimiter := detectDelimiter(rest)
	idx := strings.Index(rest, delimiter)
	return &ScmURL{
		Type:             rest[:idx],
		Delimiter:        delimiter,
		ProviderSpecific: rest[idx+len(delimiter):],
	}, nil
}

// the pipe wins whenever it appears, so that colons stay usable inside the provider part
func detectDelimiter(rest string) string {
	if strings.Contains(rest, "|") {
		return "|"
	}
	return ":"
}

// SplitOnDelimiter splits the provider specific part; a ':' delimiter keeps "://" intact.
func SplitOnDelimiter(specific, delimiter string) []string {
	if delimiter != ":" {
		return strings.Split(specific, delimiter)
	}
	const marker = "\x00"
	protected := strings.ReplaceAll(specific, "://", marker)
	parts := strings.Split(protected, ":")
	for i := range parts {
		parts[i] = strings.ReplaceAll(parts[i], marker, "://")
	}
	return parts
}
