package integrity

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the Integrity (MKS Source) backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderIntegrity, "si")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderIntegrity, "", ParseRepository, tool.Spec("", "about", "--batch")).
		Register(entities.CommandLogin, commands.Login()).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandRemove, commands.Remove()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandEdit, commands.Edit()).
		Register(entities.CommandUnEdit, commands.UnEdit()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandMkdir, commands.Mkdir()).
		Register(entities.CommandDiff, commands.Diff())
}
