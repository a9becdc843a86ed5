package vss

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the Visual SourceSafe backend.
func NewProvider(settings *entities.Settings) *scmcore.Provider {
	tool := scmcore.NewTool(settings, entities.ProviderVSS, "ss")
	commands := NewCommands(tool)

	return scmcore.NewProvider(entities.ProviderVSS, "", ParseRepository, tool.Spec("", "About")).
		Register(entities.CommandCheckOut, commands.CheckOut()).
		Register(entities.CommandUpdate, commands.Update()).
		Register(entities.CommandCheckIn, commands.CheckIn()).
		Register(entities.CommandEdit, commands.Edit()).
		Register(entities.CommandUnEdit, commands.UnEdit()).
		Register(entities.CommandStatus, commands.Status()).
		Register(entities.CommandChangeLog, commands.ChangeLog()).
		Register(entities.CommandTag, commands.Tag())
}
