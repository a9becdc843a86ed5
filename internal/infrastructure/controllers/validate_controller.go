package controllers

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/scmforge/internal/domain/commands"
	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// ValidateController handles the "validate" subcommand.
type ValidateController struct {
	command commands.Validate
	load    entities.SettingsLoader
}

func NewValidateController(command commands.Validate, load entities.SettingsLoader) *ValidateController {
	return &ValidateController{command: command, load: load}
}

func (it *ValidateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "validate <scm-url>",
		Short: "Check an SCM URL",
		Long: `Check the envelope of an SCM URL and the part specific to its provider.
Every problem found is printed; the exit code is 1 when there is any.`,
	}
}

func (it *ValidateController) Execute(cmd *cobra.Command, arguments []string) {
	if len(arguments) != 1 {
		logger.Error("validate takes exactly one scm url")
		os.Exit(1)
	}
	settings, err := settingsFromFlags(cmd, it.load)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}

	messages := it.command.Execute(settings, arguments[0])
	out := cmd.OutOrStdout()
	if len(messages) == 0 {
		_, _ = fmt.Fprintln(out, "valid")
		return
	}
	for _, message := range messages {
		_, _ = fmt.Fprintln(out, message)
	}
	os.Exit(1)
}
