package accurev

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the AccuRev backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderAccuRev, "accurev")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderAccuRev, "", ParseRepository, tool.Spec("v4.7.0", "-v")).
		Register(entities.CommandLogin, commands.Login()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandRemove, commands.Remove()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandInfo, commands.Info())
}
