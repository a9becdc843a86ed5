package perforce

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the Perforce backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderPerforce, "p4")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderPerforce, "", ParseRepository, tool.Spec("v2005.1.0", "-V")).
		Register(entities.CommandLogin, commands.Login()).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandRemove, commands.Remove()).
		Register(entities.CommandEdit, commands.Edit()).
		Register(entities.CommandUnEdit, commands.UnEdit()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandUntag, commands.Untag()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandDiff, commands.Diff()).
		Register(entities.CommandBlame, commands.Blame()).
		Register(entities.CommandInfo, commands.Info())
}
