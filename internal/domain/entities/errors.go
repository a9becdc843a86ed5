package entities

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNilRepository      = errors.New("repository cannot be null")
	ErrNilFileSet         = errors.New("file set cannot be null")
	ErrEmptyFileSet       = errors.New("file set cannot be empty for this command")
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrUnknownProvider    = errors.New("unknown provider type")
	ErrInvalidScmURL      = errors.New("invalid scm url")
)

// ValidationError lists every problem found in an SCM URL or repository descriptor.
type ValidationError struct {
	Messages []string
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidScmURL, strings.Join(e.Messages, " "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidScmURL
}

// ScmError is the uniform failure returned when a command could not run to completion:
// the tool could not be started, the context expired, or an embedded library failed.
// Tool failures with an exit code are reported through ScmResult instead.
type ScmError struct {
	Op       CommandType
	Provider ProviderType
	Err      error
}

// NewScmError wraps err, recording the stack at the call site.
func NewScmError(provider ProviderType, op CommandType, err error) *ScmError {
	var scmErr *ScmError
	if errors.As(err, &scmErr) {
		return scmErr
	}
	return &ScmError{Op: op, Provider: provider, Err: errors.WithStack(err)}
}

// WrapScmError wraps err with a formatted context message.
func WrapScmError(provider ProviderType, op CommandType, err error, format string, args ...interface{}) *ScmError {
	return &ScmError{Op: op, Provider: provider, Err: errors.Wrapf(err, format, args...)}
}

func (e *ScmError) Error() string {
	return fmt.Sprintf("scm %s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ScmError) Unwrap() error {
	return e.Err
}

// Cause returns the innermost error.
func (e *ScmError) Cause() error {
	return errors.Cause(e.Err)
}
