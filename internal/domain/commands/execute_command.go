package commands

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/scmforge/internal/infrastructure/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/process"
)

// Execute is the interface for the command dispatcher.
type Execute interface {
	Execute(
		ctx context.Context,
		settings *entities.Settings,
		request *entities.CommandRequest,
	) (*entities.ScmResult, error)
}

// ExecuteCommand routes a request to the backend named by its SCM URL. Every validation
// happens before a runner is created, so that an invalid request never spawns a process.
type ExecuteCommand struct {
	registry *infraRepos.ProviderRegistry
	runners  repositories.CommandRunnerFactory
}

// NewExecuteCommand creates a new ExecuteCommand.
func NewExecuteCommand(
	registry *infraRepos.ProviderRegistry,
	runners repositories.CommandRunnerFactory,
) *ExecuteCommand {
	return &ExecuteCommand{registry: registry, runners: runners}
}

// Execute validates the request, resolves the provider command and runs it.
func (it *ExecuteCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	request *entities.CommandRequest,
) (*entities.ScmResult, error) {
	if settings == nil {
		settings = entities.NewDefaultSettings()
	}

	resolved, provider, err := it.resolve(settings, request)
	if err != nil {
		return nil, err
	}

	command, ok := provider.Command(resolved.Command)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not support %q", entities.ErrUnsupportedCommand, provider.Type(), resolved.Command)
	}

	if resolved.FileSet == nil {
		return nil, entities.ErrNilFileSet
	}
	if resolved.Command.RequiresFiles() && resolved.FileSet.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", entities.ErrEmptyFileSet, resolved.Command)
	}

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	var runner repositories.CommandRunner
	if settings.DryRun {
		runner = process.NewRecordingRunner()
	} else {
		runner = it.runners(settings)
	}

	logger.Infof("Running %s %s on %s", provider.Type(), resolved.Command, resolved.Repository)
	result, err := command.Execute(ctx, runner, resolved)
	if err != nil {
		var scmErr *entities.ScmError
		if errors.As(err, &scmErr) {
			return nil, scmErr
		}
		return nil, entities.NewScmError(provider.Type(), resolved.Command, err)
	}

	result.DryRun = settings.DryRun
	if !result.Success {
		logger.Warnf("%s %s failed: %s", provider.Type(), resolved.Command, result.ProviderMessage)
	}
	return result, nil
}

// resolve parses the URL (when given) into a repository descriptor and returns a copy of
// the request carrying it.
func (it *ExecuteCommand) resolve(
	settings *entities.Settings,
	request *entities.CommandRequest,
) (*entities.CommandRequest, repositories.ScmProvider, error) {
	if request == nil || (request.URL == "" && request.Repository == nil) {
		return nil, nil, entities.ErrNilRepository
	}
	resolved := *request

	if request.URL == "" {
		provider, err := it.registry.Get(request.Repository.Type, settings)
		if err != nil {
			return nil, nil, err
		}
		return &resolved, provider, nil
	}

	scmURL, err := entities.ParseScmURL(request.URL)
	if err != nil {
		return nil, nil, err
	}
	provider, err := it.registry.Get(entities.ProviderType(scmURL.Type), settings)
	if err != nil {
		return nil, nil, err
	}
	descriptor, err := provider.ParseRepository(scmURL.ProviderSpecific, scmURL.Delimiter)
	if err != nil {
		return nil, nil, err
	}
	resolved.Repository = entities.NewScmRepository(provider.Type(), scmURL.Delimiter, descriptor)
	return &resolved, provider, nil
}
