package internal

import "github.com/rios0rios0/scmforge/internal/domain/entities"

// AppInternal holds what the CLI needs after dependency injection.
type AppInternal struct {
	controllers []entities.Controller
}

func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: *controllers}
}

// GetControllers returns every subcommand controller.
func (it *AppInternal) GetControllers() []entities.Controller {
	return it.controllers
}
