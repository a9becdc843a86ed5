package clearcase

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the ClearCase backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderClearCase, "cleartool")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderClearCase, "", ParseRepository, tool.Spec("v7.0.0", "-version")).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandEdit, commands.Edit()).
		Register(entities.CommandUnEdit, commands.UnEdit()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandRemove, commands.Remove()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandBlame, commands.Blame())
}
