//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/scmforge/internal/domain/commands"
	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// StubExecuteCommand is a stub implementation of commands.Execute.
type StubExecuteCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Result           *entities.ScmResult
	LastSettings     *entities.Settings
	LastRequest      *entities.CommandRequest
}

var _ commands.Execute = (*StubExecuteCommand)(nil)

func (s *StubExecuteCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	request *entities.CommandRequest,
) (*entities.ScmResult, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastRequest = request
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	if s.Result == nil {
		return entities.NewSuccessResult("stub"), nil
	}
	return s.Result, nil
}
