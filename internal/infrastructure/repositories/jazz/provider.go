package jazz

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the Jazz (Rational Team Concert) backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderJazz, "scm")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderJazz, ".jazz5", ParseRepository, tool.Spec("", "version")).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandEdit, commands.Edit()).
		Register(entities.CommandUnEdit, commands.UnEdit()).
		Register(entities.CommandDiff, commands.Diff()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandBlame, commands.Blame()).
		Register(entities.CommandList, commands.List())
}
