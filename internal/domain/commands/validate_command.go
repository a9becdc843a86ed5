package commands

import (
	"fmt"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	infraRepos "github.com/rios0rios0/scmforge/internal/infrastructure/repositories"
)

// Validate is the interface for SCM URL validation.
type Validate interface {
	Execute(settings *entities.Settings, url string) []string
}

// ValidateCommand checks an SCM URL envelope and then the backend specific part.
type ValidateCommand struct {
	registry *infraRepos.ProviderRegistry
}

// NewValidateCommand creates a new ValidateCommand.
func NewValidateCommand(registry *infraRepos.ProviderRegistry) *ValidateCommand {
	return &ValidateCommand{registry: registry}
}

// Execute returns every problem found; an empty slice means the URL is valid.
func (it *ValidateCommand) Execute(settings *entities.Settings, url string) []string {
	if messages := entities.ValidateScmURL(url); len(messages) > 0 {
		return messages
	}
	scmURL, err := entities.ParseScmURL(url)
	if err != nil {
		return []string{err.Error()}
	}

	provider, err := it.registry.Get(entities.ProviderType(scmURL.Type), settings)
	if err != nil {
		return []string{fmt.Sprintf("No such provider installed '%s'.", scmURL.Type)}
	}
	return provider.ValidateRepository(scmURL.ProviderSpecific, scmURL.Delimiter)
}
