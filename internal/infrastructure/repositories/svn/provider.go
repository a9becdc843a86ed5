package svn

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the Subversion backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderSVN, "svn")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderSVN, ".svn", ParseRepository, tool.Spec("v1.6.0", "--version", "--quiet")).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandRemove, commands.Remove()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandDiff, commands.Diff()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandBranch, commands.Branch()).
		Register(entities.CommandUntag, commands.Untag()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandBlame, commands.Blame()).
		Register(entities.CommandList, commands.List()).
		Register(entities.CommandInfo, commands.Info()).
		Register(entities.CommandRemoteInfo, commands.RemoteInfo()).
		Register(entities.CommandMkdir, commands.Mkdir()).
		Register(entities.CommandExport, commands.Export())
}
