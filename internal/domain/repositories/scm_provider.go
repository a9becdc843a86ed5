package repositories

import (
	"context"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Command is one operation of one backend.
type Command interface {
	Execute(
		ctx context.Context,
		runner CommandRunner,
		request *entities.CommandRequest,
	) (*entities.ScmResult, error)
}

// ToolSpec describes how to detect the version of a subprocess backend.
type ToolSpec struct {
	Executable     string
	VersionArgs    []string
	MinimumVersion string // semver, e.g. "v1.7.0"; empty means any
}

// ScmProvider is a backend: a URL grammar plus the commands it supports.
type ScmProvider interface {
	Type() entities.ProviderType
	// MetadataDirectory is the bookkeeping directory the tool keeps in a working copy, if any.
	MetadataDirectory() string
	ParseRepository(specific, delimiter string) (entities.ProviderRepository, error)
	// ValidateRepository returns human readable problems; an empty slice means valid.
	ValidateRepository(specific, delimiter string) []string
	Command(commandType entities.CommandType) (Command, bool)
	Commands() []entities.CommandType
	// Tool is nil for embedded backends.
	Tool() *ToolSpec
}
