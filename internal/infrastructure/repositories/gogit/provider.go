package gogit

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	scmgit "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/git"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the embedded git backend. It shares the URL grammar of the git
// command line backend and needs no executable.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderGoGit, "")
	commands := NewCommands(settings, tool)

	return scmcore.NewProvider(entities.ProviderGoGit, ".git", scmgit.ParseRepository, nil).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandRemove, commands.Remove()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandUntag, commands.Untag()).
		Register(entities.CommandBranch, commands.Branch()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandBlame, commands.Blame()).
		Register(entities.CommandDiff, commands.Diff()).
		Register(entities.CommandInfo, commands.Info()).
		Register(entities.CommandList, commands.List()).
		Register(entities.CommandRemoteInfo, commands.RemoteInfo())
}
