package scmcore

import (
	"errors"

	"github.com/hashicorp/go-set/v2"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// Parser turns the provider specific part of an SCM URL into a descriptor.
type Parser func(specific, delimiter string) (entities.ProviderRepository, error)

// Provider is a table driven ScmProvider: a URL parser plus a map of commands.
type Provider struct {
	providerType entities.ProviderType
	metadataDir  string
	parser       Parser
	tool         *repositories.ToolSpec
	commands     map[entities.CommandType]repositories.Command
	supported    *set.Set[entities.CommandType]
}

var _ repositories.ScmProvider = (*Provider)(nil)

// NewProvider creates a provider without commands. tool is nil for embedded backends.
func NewProvider(
	providerType entities.ProviderType,
	metadataDir string,
	parser Parser,
	tool *repositories.ToolSpec,
) *Provider {
	return &Provider{
		providerType: providerType,
		metadataDir:  metadataDir,
		parser:       parser,
		tool:         tool,
		commands:     make(map[entities.CommandType]repositories.Command),
		supported:    set.New[entities.CommandType](len(entities.AllCommandTypes())),
	}
}

// Register binds a command implementation; registering twice replaces the first one.
func (p *Provider) Register(commandType entities.CommandType, command repositories.Command) *Provider {
	p.commands[commandType] = command
	p.supported.Insert(commandType)
	return p
}

func (p *Provider) Type() entities.ProviderType {
	return p.providerType
}

func (p *Provider) MetadataDirectory() string {
	return p.metadataDir
}

func (p *Provider) Tool() *repositories.ToolSpec {
	return p.tool
}

func (p *Provider) ParseRepository(specific, delimiter string) (entities.ProviderRepository, error) {
	return p.parser(specific, delimiter)
}

func (p *Provider) ValidateRepository(specific, delimiter string) []string {
	_, err := p.parser(specific, delimiter)
	if err == nil {
		return nil
	}
	var validationErr *entities.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Messages
	}
	return []string{err.Error()}
}

func (p *Provider) Command(commandType entities.CommandType) (repositories.Command, bool) {
	command, ok := p.commands[commandType]
	return command, ok
}

// Commands lists the supported commands in the canonical order.
func (p *Provider) Commands() []entities.CommandType {
	result := make([]entities.CommandType, 0, p.supported.Size())
	for _, c := range entities.AllCommandTypes() {
		if p.supported.Contains(c) {
			result = append(result, c)
		}
	}
	return result
}
