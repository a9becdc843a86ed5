package starteam

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the StarTeam backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderStarteam, "stcmd")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderStarteam, "", ParseRepository, tool.Spec("", "-?")).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandRemove, commands.Remove()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandEdit, commands.Edit()).
		Register(entities.CommandUnEdit, commands.UnEdit()).
		Register(entities.CommandDiff, commands.Diff()).
		Register(entities.CommandChangeLog, commands.ChangeLog())
}
