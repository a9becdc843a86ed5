package scmcore

import (
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// IsDryRun reports whether the runner only records invocations.
func IsDryRun(runner repositories.CommandRunner) bool {
	dry, ok := runner.(repositories.DryRunner)
	return ok && dry.DryRun()
}
