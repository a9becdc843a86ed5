package repositories

import (
	"context"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// CommandRunner executes one invocation, streaming stdout and stderr lines to the consumers.
// A non-zero exit is not an error: err is reserved for spawn failures, cancellation and timeouts.
type CommandRunner interface {
	Run(
		ctx context.Context,
		invocation *entities.Invocation,
		stdout, stderr OutputConsumer,
	) (exitCode int, err error)
}

// CommandRunnerFactory builds a runner honouring the settings (charset, verbosity).
type CommandRunnerFactory func(settings *entities.Settings) CommandRunner

// DryRunner is implemented by runners that only record. In-process backends check it
// before touching the working copy.
type DryRunner interface {
	CommandRunner
	DryRun() bool
}
