package git

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the git command line backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderGit, "git")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderGit, ".git", ParseRepository, tool.Spec("v1.7.0", "--version")).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandRemove, commands.Remove()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandDiff, commands.Diff()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandUntag, commands.Untag()).
		Register(entities.CommandBranch, commands.Branch()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandBlame, commands.Blame()).
		Register(entities.CommandList, commands.List()).
		Register(entities.CommandRemoteInfo, commands.RemoteInfo()).
		Register(entities.CommandInfo, commands.Info())
}
