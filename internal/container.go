package internal

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/scmforge/internal/domain/commands"
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/controllers"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories"
)

// layers are registered bottom-up: infrastructure repos, domain entities, domain commands, controllers.
var layers = []func(container *dig.Container) error{
	repositories.RegisterProviders,
	entities.RegisterProviders,
	commands.RegisterProviders,
	controllers.RegisterProviders,
}

// RegisterProviders registers every layer plus the AppInternal with the DIG container.
func RegisterProviders(container *dig.Container) error {
	for _, register := range layers {
		if err := register(container); err != nil {
			return err
		}
	}
	return container.Provide(NewAppInternal)
}
