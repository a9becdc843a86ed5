package scmcore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// Session carries values between the steps of one pipeline run.
type Session struct {
	values   map[string]string
	cleanups []func()
}

func NewSession() *Session {
	return &Session{values: make(map[string]string)}
}

func (s *Session) Set(key, value string) {
	s.values[key] = value
}

func (s *Session) Get(key string) string {
	return s.values[key]
}

// OnFinish registers a function run when the pipeline returns, in reverse order.
func (s *Session) OnFinish(cleanup func()) {
	s.cleanups = append(s.cleanups, cleanup)
}

func (s *Session) finish() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
}

// BuildFunc assembles the invocation of a step. A nil invocation skips the step.
type BuildFunc func(request *entities.CommandRequest, session *Session) (*entities.Invocation, error)

// ConsumerFunc creates a fresh consumer for one step.
type ConsumerFunc func(request *entities.CommandRequest, session *Session) repositories.ResultConsumer

// Step is one tool invocation of a command.
type Step struct {
	Name     string
	Build    BuildFunc
	Consumer ConsumerFunc

	// ParseStderr also feeds stderr lines to the consumer (bazaar reports on stderr). The
	// runner then merges both streams so the consumer sees them in order.
	ParseStderr bool
	// FailOn lists stderr fragments that mean failure even with an accepted exit code.
	FailOn []string
	Skip   func(request *entities.CommandRequest, session *Session) bool
	// Always runs the step after an earlier failure, for cleanups such as "ccm stop".
	Always bool
}

// Pipeline runs steps in order and stops at the first failing one.
type Pipeline struct {
	Provider entities.ProviderType
	Command  entities.CommandType
	Steps    []Step
}

var _ repositories.Command = (*Pipeline)(nil)

// Single is a one-step pipeline.
func Single(
	provider entities.ProviderType,
	command entities.CommandType,
	build BuildFunc,
	consumer ConsumerFunc,
) *Pipeline {
	return &Pipeline{
		Provider: provider,
		Command:  command,
		Steps:    []Step{{Name: string(command), Build: build, Consumer: consumer}},
	}
}

// Execute runs the pipeline. Non accepted exit codes produce a failed result carrying
// stderr; runner errors are returned wrapped in an ScmError.
func (it *Pipeline) Execute(
	ctx context.Context,
	runner repositories.CommandRunner,
	request *entities.CommandRequest,
) (*entities.ScmResult, error) {
	session := NewSession()
	defer session.finish()

	result := entities.NewSuccessResult("")
	failed := false

	for _, step := range it.Steps {
		if failed && !step.Always {
			continue
		}
		if step.Skip != nil && step.Skip(request, session) {
			continue
		}

		invocation, err := step.Build(request, session)
		if err != nil {
			return nil, entities.WrapScmError(it.Provider, it.Command, err, "%s", step.Name)
		}
		if invocation == nil {
			continue
		}
		result.AppendCommandLine(invocation.CommandLine())

		var consumer repositories.ResultConsumer = &LineCollector{}
		if step.Consumer != nil {
			consumer = step.Consumer(request, session)
		}
		stderr := &LineCollector{}
		var stderrSink repositories.OutputConsumer = stderr
		if step.ParseStderr {
			invocation.CombineOutput()
			stderrSink = Tee(stderr, consumer)
		}

		code, runErr := runner.Run(ctx, invocation, consumer, stderrSink)
		if runErr != nil {
			if failed {
				logger.Warnf("Cleanup step %q failed: %v", step.Name, runErr)
				continue
			}
			return nil, entities.WrapScmError(it.Provider, it.Command, runErr, "running %s", step.Name)
		}

		if failed {
			continue
		}
		if !invocation.Accepts(code) || stderr.ContainsAny(step.FailOn...) {
			result.Fail(
				fmt.Sprintf("The %s command failed (exit code %d).", filepath.Base(invocation.Executable), code),
				invocation.Mask(stderr.Text()),
			)
			failed = true
			continue
		}

		consumer.Apply(result)
		if !result.Success {
			failed = true
		}
	}

	logger.Debugf("%s %s finished, success=%t, %d file(s)", it.Provider, it.Command, result.Success, len(result.Files))
	return result, nil
}

// CommandFunc adapts an in-process implementation to the Command interface.
type CommandFunc func(
	ctx context.Context,
	runner repositories.CommandRunner,
	request *entities.CommandRequest,
) (*entities.ScmResult, error)

func (f CommandFunc) Execute(
	ctx context.Context,
	runner repositories.CommandRunner,
	request *entities.CommandRequest,
) (*entities.ScmResult, error) {
	return f(ctx, runner, request)
}

// RunFunc is the body of an in-process command; it fills result or returns an error.
type RunFunc func(ctx context.Context, request *entities.CommandRequest, result *entities.ScmResult) error

// InProcess adapts a RunFunc into a command. Dry runs only describe the operation and
// errors are wrapped into an ScmError.
func InProcess(provider entities.ProviderType, command entities.CommandType, run RunFunc) CommandFunc {
	return func(
		ctx context.Context,
		runner repositories.CommandRunner,
		request *entities.CommandRequest,
	) (*entities.ScmResult, error) {
		result := entities.NewSuccessResult(fmt.Sprintf("%s %s %s", provider, command, request.BaseDir()))
		if IsDryRun(runner) {
			result.DryRun = true
			return result, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, entities.NewScmError(provider, command, err)
		}
		if err := run(ctx, request, result); err != nil {
			return nil, entities.NewScmError(provider, command, err)
		}
		logger.Debugf("%s %s finished, %d file(s)", provider, command, len(result.Files))
		return result, nil
	}
}

// ContainsAnyFold is a case insensitive substring search.
func ContainsAnyFold(text string, fragments ...string) bool {
	lower := strings.ToLower(text)
	for _, f := range fragments {
		if f != "" && strings.Contains(lower, strings.ToLower(f)) {
			return true
		}
	}
	return false
}
