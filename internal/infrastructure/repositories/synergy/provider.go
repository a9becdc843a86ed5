package synergy

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the Synergy (ccm) backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderSynergy, "ccm")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderSynergy, "", ParseRepository, tool.Spec("", "version", "-all")).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandEdit, commands.Edit()).
		Register(entities.CommandUnEdit, commands.UnEdit()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandRemove, commands.Remove()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandChangeLog, commands.ChangeLog())
}
