//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// StubCommand records its calls and answers with a fixed result.
type StubCommand struct {
	Result      *entities.ScmResult
	Err         error
	CallCount   int
	LastRequest *entities.CommandRequest
	// Invocation, when set, is run through the runner so that runner behaviour is observable.
	Invocation *entities.Invocation
}

var _ repositories.Command = (*StubCommand)(nil)

func (s *StubCommand) Execute(
	ctx context.Context,
	runner repositories.CommandRunner,
	request *entities.CommandRequest,
) (*entities.ScmResult, error) {
	s.CallCount++
	s.LastRequest = request
	if s.Invocation != nil {
		if _, err := runner.Run(ctx, s.Invocation, discard{}, discard{}); err != nil {
			return nil, err
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Result == nil {
		return entities.NewSuccessResult("stub"), nil
	}
	return s.Result, nil
}

type discard struct{}

func (discard) ConsumeLine(string) {}

// StubDescriptor is a minimal repository descriptor.
type StubDescriptor struct {
	entities.Credentials
	Specific string
}

func (d *StubDescriptor) ConnectionURL(_ string) string {
	return d.Specific
}

// StubScmProvider is a configurable provider serving StubCommands.
type StubScmProvider struct {
	ProviderType entities.ProviderType
	StubCommands map[entities.CommandType]*StubCommand
	ParseErr     error
	ToolSpec     *repositories.ToolSpec
}

var _ repositories.ScmProvider = (*StubScmProvider)(nil)

// NewStubScmProvider creates a provider supporting the given commands.
func NewStubScmProvider(providerType entities.ProviderType, commands ...entities.CommandType) *StubScmProvider {
	provider := &StubScmProvider{ProviderType: providerType, StubCommands: make(map[entities.CommandType]*StubCommand)}
	for _, command := range commands {
		provider.StubCommands[command] = &StubCommand{}
	}
	return provider
}

func (s *StubScmProvider) Type() entities.ProviderType {
	return s.ProviderType
}

func (s *StubScmProvider) MetadataDirectory() string {
	return ""
}

func (s *StubScmProvider) Tool() *repositories.ToolSpec {
	return s.ToolSpec
}

func (s *StubScmProvider) ParseRepository(specific, _ string) (entities.ProviderRepository, error) {
	if s.ParseErr != nil {
		return nil, s.ParseErr
	}
	return &StubDescriptor{Specific: specific}, nil
}

func (s *StubScmProvider) ValidateRepository(specific, delimiter string) []string {
	if _, err := s.ParseRepository(specific, delimiter); err != nil {
		return []string{err.Error()}
	}
	return nil
}

func (s *StubScmProvider) Command(commandType entities.CommandType) (repositories.Command, bool) {
	command, ok := s.StubCommands[commandType]
	return command, ok
}

func (s *StubScmProvider) Commands() []entities.CommandType {
	commands := make([]entities.CommandType, 0, len(s.StubCommands))
	for _, commandType := range entities.AllCommandTypes() {
		if _, ok := s.StubCommands[commandType]; ok {
			commands = append(commands, commandType)
		}
	}
	return commands
}
