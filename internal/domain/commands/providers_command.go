package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/scmforge/internal/infrastructure/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/process"
)

// Providers is the interface for the provider listing.
type Providers interface {
	Execute(ctx context.Context, settings *entities.Settings, detectVersions bool) []entities.ProviderInfo
}

// ProvidersCommand describes every registered backend, optionally probing tool versions.
type ProvidersCommand struct {
	registry *infraRepos.ProviderRegistry
	runners  repositories.CommandRunnerFactory
}

// NewProvidersCommand creates a new ProvidersCommand.
func NewProvidersCommand(
	registry *infraRepos.ProviderRegistry,
	runners repositories.CommandRunnerFactory,
) *ProvidersCommand {
	return &ProvidersCommand{registry: registry, runners: runners}
}

// Execute lists the providers in a stable order.
func (it *ProvidersCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	detectVersions bool,
) []entities.ProviderInfo {
	if settings == nil {
		settings = entities.NewDefaultSettings()
	}
	runner := it.runners(settings)

	infos := make([]entities.ProviderInfo, 0, len(it.registry.Names()))
	for _, name := range it.registry.Names() {
		provider, err := it.registry.Get(name, settings)
		if err != nil {
			logger.Warnf("Skipping provider %q: %v", name, err)
			continue
		}

		info := entities.ProviderInfo{
			Type:              provider.Type(),
			MetadataDirectory: provider.MetadataDirectory(),
			Commands:          provider.Commands(),
			Embedded:          provider.Tool() == nil,
			Supported:         true,
		}
		if tool := provider.Tool(); tool != nil {
			info.Executable = tool.Executable
			info.MinimumVersion = tool.MinimumVersion
			if detectVersions {
				it.detectVersion(ctx, runner, tool, &info)
			}
		}
		infos = append(infos, info)
	}
	return infos
}

func (it *ProvidersCommand) detectVersion(
	ctx context.Context,
	runner repositories.CommandRunner,
	tool *repositories.ToolSpec,
	info *entities.ProviderInfo,
) {
	version, err := process.DetectVersion(ctx, runner, tool)
	if err != nil {
		logger.Debugf("Version detection of %s failed: %v", tool.Executable, err)
		info.Supported = false
		info.Problem = err.Error()
		return
	}
	info.Version = version
	if !process.AtLeast(version, tool.MinimumVersion) {
		info.Supported = false
		info.Problem = "requires " + tool.MinimumVersion + " or newer"
	}
}
