package tfs

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the Team Foundation Server backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderTFS, "tf")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderTFS, "$tf", ParseRepository, tool.Spec("", "help")).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandAdd, commands.Add()).
		Register(entities.CommandEdit, commands.Edit()).
		Register(entities.CommandUnEdit, commands.UnEdit()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandTag, commands.Tag()).
		Register(entities.CommandBranch, commands.Branch()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandDiff, commands.Diff()).
		Register(entities.CommandList, commands.List())
}
