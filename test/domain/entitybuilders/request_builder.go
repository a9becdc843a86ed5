//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// RequestBuilder helps create command requests with a fluent interface.
type RequestBuilder struct {
	*testkit.BaseBuilder
	command    entities.CommandType
	url        string
	repository *entities.ScmRepository
	baseDir    string
	files      []string
	parameters entities.CommandParameters
}

// NewRequestBuilder creates a new request builder with sensible defaults.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		command:     entities.CommandStatus,
		baseDir:     "/work",
	}
}

// WithCommand sets the command type.
func (b *RequestBuilder) WithCommand(command entities.CommandType) *RequestBuilder {
	b.command = command
	return b
}

// WithURL sets the SCM URL, parsed by the dispatcher.
func (b *RequestBuilder) WithURL(url string) *RequestBuilder {
	b.url = url
	return b
}

// WithRepository sets an already parsed repository descriptor.
func (b *RequestBuilder) WithRepository(
	providerType entities.ProviderType,
	delimiter string,
	descriptor entities.ProviderRepository,
) *RequestBuilder {
	b.repository = entities.NewScmRepository(providerType, delimiter, descriptor)
	return b
}

// WithBaseDir sets the working directory.
func (b *RequestBuilder) WithBaseDir(baseDir string) *RequestBuilder {
	b.baseDir = baseDir
	return b
}

// WithFiles sets the files relative to the base directory.
func (b *RequestBuilder) WithFiles(files ...string) *RequestBuilder {
	b.files = files
	return b
}

// WithMessage sets the commit message.
func (b *RequestBuilder) WithMessage(message string) *RequestBuilder {
	b.parameters.Message = message
	return b
}

// WithName sets the tag or branch name.
func (b *RequestBuilder) WithName(name string) *RequestBuilder {
	b.parameters.Name = name
	return b
}

// WithVersion sets the version to operate on.
func (b *RequestBuilder) WithVersion(version *entities.ScmVersion) *RequestBuilder {
	b.parameters.Version = version
	return b
}

// WithParameters replaces all parameters.
func (b *RequestBuilder) WithParameters(parameters entities.CommandParameters) *RequestBuilder {
	b.parameters = parameters
	return b
}

// Build creates the request (satisfies testkit.Builder interface).
func (b *RequestBuilder) Build() interface{} {
	return b.BuildRequest()
}

// BuildRequest creates the request with a concrete return type.
func (b *RequestBuilder) BuildRequest() *entities.CommandRequest {
	return &entities.CommandRequest{
		Command:    b.command,
		URL:        b.url,
		Repository: b.repository,
		FileSet:    entities.NewFileSet(b.baseDir, b.files...),
		Parameters: b.parameters,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RequestBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.command = entities.CommandStatus
	b.url = ""
	b.repository = nil
	b.baseDir = "/work"
	b.files = nil
	b.parameters = entities.CommandParameters{}
	return b
}

// Clone creates a deep copy of the RequestBuilder.
func (b *RequestBuilder) Clone() testkit.Builder {
	return &RequestBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		command:     b.command,
		url:         b.url,
		repository:  b.repository,
		baseDir:     b.baseDir,
		files:       append([]string{}, b.files...),
		parameters:  b.parameters,
	}
}
