//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// Feed hands every line of a captured tool output to the consumer.
func Feed(consumer repositories.OutputConsumer, output string) {
	for _, line := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		consumer.ConsumeLine(strings.TrimSuffix(line, "\r"))
	}
}

// Apply feeds the output and returns the result the consumer contributes to.
func Apply(consumer repositories.ResultConsumer, output string) *entities.ScmResult {
	Feed(consumer, output)
	result := entities.NewSuccessResult("")
	consumer.Apply(result)
	return result
}

// Paths lists the paths of the result files in order.
func Paths(result *entities.ScmResult) []string {
	paths := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	return paths
}
