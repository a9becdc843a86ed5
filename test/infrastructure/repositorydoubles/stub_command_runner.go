//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// StubResponse is the canned outcome of one invocation.
type StubResponse struct {
	Stdout   []string
	Stderr   []string
	ExitCode int
	Err      error
}

// StubCommandRunner replays canned responses in order and records every invocation.
// Once the responses run out it answers with an empty successful run.
type StubCommandRunner struct {
	Responses   []StubResponse
	Invocations []*entities.Invocation
}

var _ repositories.CommandRunner = (*StubCommandRunner)(nil)

// NewStubCommandRunner creates a runner answering with the given responses.
func NewStubCommandRunner(responses ...StubResponse) *StubCommandRunner {
	return &StubCommandRunner{Responses: responses}
}

// WithOutput queues a successful run printing stdout.
func (s *StubCommandRunner) WithOutput(stdout string) *StubCommandRunner {
	s.Responses = append(s.Responses, StubResponse{Stdout: lines(stdout)})
	return s
}

// WithFailure queues a run exiting with code and printing stderr.
func (s *StubCommandRunner) WithFailure(code int, stderr string) *StubCommandRunner {
	s.Responses = append(s.Responses, StubResponse{Stderr: lines(stderr), ExitCode: code})
	return s
}

func (s *StubCommandRunner) Run(
	_ context.Context,
	invocation *entities.Invocation,
	stdout, stderr repositories.OutputConsumer,
) (int, error) {
	s.Invocations = append(s.Invocations, invocation)
	if len(s.Responses) == 0 {
		return 0, nil
	}
	response := s.Responses[0]
	s.Responses = s.Responses[1:]

	for _, line := range response.Stdout {
		stdout.ConsumeLine(line)
	}
	for _, line := range response.Stderr {
		stderr.ConsumeLine(line)
	}
	return response.ExitCode, response.Err
}

// CallCount is the number of invocations run so far.
func (s *StubCommandRunner) CallCount() int {
	return len(s.Invocations)
}

// Args returns the arguments of the n-th invocation joined by spaces.
func (s *StubCommandRunner) Args(n int) string {
	return strings.Join(s.Invocations[n].Args, " ")
}

func lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
