package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/scmforge/internal/domain/commands"
	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// ProvidersController handles the "providers" subcommand.
type ProvidersController struct {
	command commands.Providers
	load    entities.SettingsLoader
}

func NewProvidersController(command commands.Providers, load entities.SettingsLoader) *ProvidersController {
	return &ProvidersController{command: command, load: load}
}

func (it *ProvidersController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "providers",
		Short: "List the SCM providers",
		Long: `List the registered SCM providers with their commands.
With --detect-versions the tool of every command line backend is run to detect its version.`,
	}
}

func (it *ProvidersController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("detect-versions", false, "Detect the installed tool versions")
}

func (it *ProvidersController) Execute(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	settings, err := settingsFromFlags(cmd, it.load)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}
	detectVersions, _ := cmd.Flags().GetBool("detect-versions")

	NewPrinter(cmd.OutOrStdout()).Providers(it.command.Execute(ctx, settings, detectVersions))
}
