//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// NewRequest parses specific with the provider and roots the files in a temporary directory.
func NewRequest(
	t testing.TB,
	provider repositories.ScmProvider,
	specific string,
	files ...string,
) *entities.CommandRequest {
	t.Helper()
	parsed, err := provider.ParseRepository(specific, ":")
	require.NoError(t, err)
	return &entities.CommandRequest{
		Repository: entities.NewScmRepository(provider.Type(), ":", parsed),
		FileSet:    entities.NewFileSet(t.TempDir(), files...),
	}
}

// Execute runs one command of the provider against the stub runner.
func Execute(
	t testing.TB,
	provider repositories.ScmProvider,
	commandType entities.CommandType,
	request *entities.CommandRequest,
	runner *StubCommandRunner,
) *entities.ScmResult {
	t.Helper()
	command, ok := provider.Command(commandType)
	require.True(t, ok, "%s does not support %s", provider.Type(), commandType)
	request.Command = commandType
	result, err := command.Execute(context.Background(), runner, request)
	require.NoError(t, err)
	return result
}
