package controllers

import (
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// FlagsBinder is implemented by controllers that declare their own flags.
type FlagsBinder interface {
	AddFlags(cmd *cobra.Command)
}

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewScmControllers); err != nil {
		return err
	}
	if err := container.Provide(NewValidateController); err != nil {
		return err
	}
	if err := container.Provide(NewProvidersController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	scmControllers []*ScmController,
	validateController *ValidateController,
	providersController *ProvidersController,
) *[]entities.Controller {
	controllers := make([]entities.Controller, 0, len(scmControllers)+2)
	for _, controller := range scmControllers {
		controllers = append(controllers, controller)
	}
	controllers = append(controllers, validateController, providersController)
	return &controllers
}
