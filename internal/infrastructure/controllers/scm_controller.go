package controllers

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/scmforge/internal/domain/commands"
	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

var descriptions = map[entities.CommandType]string{
	entities.CommandAdd:        "Schedule files for addition",
	entities.CommandRemove:     "Schedule files for removal",
	entities.CommandStatus:     "Show the working copy changes",
	entities.CommandCheckIn:    "Commit the working copy changes",
	entities.CommandCheckOut:   "Check out a repository into the base directory",
	entities.CommandUpdate:     "Update the working copy",
	entities.CommandDiff:       "Show the differences of the working copy or between revisions",
	entities.CommandTag:        "Create a tag",
	entities.CommandUntag:      "Delete a tag",
	entities.CommandBranch:     "Create a branch",
	entities.CommandChangeLog:  "Show the history of the repository",
	entities.CommandBlame:      "Attribute each line of a file",
	entities.CommandList:       "List the files of the repository",
	entities.CommandInfo:       "Describe the working copy",
	entities.CommandRemoteInfo: "List the remote branches and tags",
	entities.CommandMkdir:      "Create directories in the repository",
	entities.CommandExport:     "Export a clean copy of the repository",
	entities.CommandEdit:       "Open files for editing",
	entities.CommandUnEdit:     "Revert files opened for editing",
	entities.CommandLogin:      "Authenticate against the server",
}

// ScmController binds one command type to a subcommand.
type ScmController struct {
	commandType entities.CommandType
	command     commands.Execute
	load        entities.SettingsLoader
}

// NewScmController creates a controller for a single command type.
func NewScmController(
	commandType entities.CommandType,
	command commands.Execute,
	load entities.SettingsLoader,
) *ScmController {
	return &ScmController{commandType: commandType, command: command, load: load}
}

// NewScmControllers creates one controller per known command type.
func NewScmControllers(command commands.Execute, load entities.SettingsLoader) []*ScmController {
	controllers := make([]*ScmController, 0, len(entities.AllCommandTypes()))
	for _, commandType := range entities.AllCommandTypes() {
		controllers = append(controllers, NewScmController(commandType, command, load))
	}
	return controllers
}

func (it *ScmController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   fmt.Sprintf("%s <scm-url> [files...]", it.commandType),
		Short: descriptions[it.commandType],
		Long: fmt.Sprintf(`%s.

The SCM URL has the form "scm:<provider><delimiter><provider specific part>",
for instance "scm:git:https://example.com/repo.git" or "scm:local|/repos|module".
Files are relative to --basedir.`, descriptions[it.commandType]),
	}
}

// AddFlags declares the request flags and, for changelog, the changelog file option.
func (it *ScmController) AddFlags(cmd *cobra.Command) {
	AddRequestFlags(cmd)
	if it.commandType == entities.CommandChangeLog {
		cmd.Flags().String("changelog-file", "",
			"Insert the change sets under the Unreleased section of this CHANGELOG.md")
		cmd.Flags().String("markdown", "",
			"Print the change sets as a Keep-a-Changelog section with this version heading")
	}
}

func (it *ScmController) Execute(cmd *cobra.Command, arguments []string) {
	if err := it.run(cmd.Context(), cmd, arguments); err != nil {
		logger.Errorf("%s failed: %v", it.commandType, err)
		os.Exit(1)
	}
}

func (it *ScmController) run(ctx context.Context, cmd *cobra.Command, arguments []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	settings, err := settingsFromFlags(cmd, it.load)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	request, err := RequestFromFlags(cmd, it.commandType, arguments)
	if err != nil {
		return err
	}

	result, err := it.command.Execute(ctx, settings, request)
	if err != nil {
		return err
	}
	heading, _ := cmd.Flags().GetString("markdown")
	NewPrinter(cmd.OutOrStdout()).WithMarkdownHeading(heading).Result(it.commandType, result)
	if !result.Success {
		return fmt.Errorf("%s", result.ProviderMessage)
	}

	if path, _ := cmd.Flags().GetString("changelog-file"); path != "" && result.ChangeLog != nil {
		return writeChangeLog(path, result.ChangeLog)
	}
	return nil
}

func writeChangeLog(path string, changeLog *entities.ChangeLogSet) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	updated := entities.InsertIntoChangelog(string(content), changeLog.Bullets())
	if updated == string(content) {
		logger.Warnf("%s has no Unreleased section or no change, left untouched", path)
		return nil
	}
	logger.Infof("Added %d entries to %s", len(changeLog.ChangeSets), path)
	return os.WriteFile(path, []byte(updated), 0o644)
}
