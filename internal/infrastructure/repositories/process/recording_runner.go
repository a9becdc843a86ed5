package process

import (
	"context"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// RecordingRunner never spawns anything: it logs and records each invocation and reports
// success without output. It backs the dry-run mode.
type RecordingRunner struct {
	mu          sync.Mutex
	invocations []*entities.Invocation
}

var _ repositories.DryRunner = (*RecordingRunner)(nil)

func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{}
}

func (it *RecordingRunner) Run(
	_ context.Context,
	invocation *entities.Invocation,
	_, _ repositories.OutputConsumer,
) (int, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.invocations = append(it.invocations, invocation)
	logger.Infof("[dry-run] %s", invocation.CommandLine())
	return 0, nil
}

func (it *RecordingRunner) DryRun() bool {
	return true
}

// Invocations returns what would have been executed.
func (it *RecordingRunner) Invocations() []*entities.Invocation {
	it.mu.Lock()
	defer it.mu.Unlock()
	return append([]*entities.Invocation{}, it.invocations...)
}
