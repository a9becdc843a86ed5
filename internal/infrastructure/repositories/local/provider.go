package local

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// NewProvider wires the backend that treats a plain directory as a repository. It runs in
// process and keeps its bookkeeping in the manifest of each checkout.
func NewProvider(_ *entities.Settings) *scmcore.Provider {
	return scmcore.NewProvider(entities.ProviderLocal, ManifestName, ParseRepository, nil).
		Register(entities.CommandCheckOut, CheckOut()).
		Register(entities.CommandUpdate, Update()).
		Register(entities.CommandStatus, Status()).
		Register(entities.CommandAdd, Add()).
		Register(entities.CommandRemove, Remove()).
		Register(entities.CommandCheckIn, CheckIn()).
		Register(entities.CommandTag, Tag()).
		Register(entities.CommandList, List()).
		Register(entities.CommandMkdir, Mkdir()).
		Register(entities.CommandExport, Export()).
		Register(entities.CommandChangeLog, ChangeLog())
}
