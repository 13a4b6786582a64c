package errors

import (
	"errors"
	"fmt"
)

var (
	ErrManifestNotFound    = errors.New("manifest file not found")
	ErrManifestParseFailed = errors.New("manifest parsing failed")
	ErrSequenceInvalid     = errors.New("step sequence invalid")
	ErrInstallFailed       = errors.New("dependency installation failed")
	ErrCollectFailed       = errors.New("static asset collection failed")
	ErrMigrateFailed       = errors.New("schema migration failed")
	ErrRuntimeFailed       = errors.New("runtime operation failed")
	ErrConfigInvalid       = errors.New("configuration invalid")
	ErrNetworkFailed       = errors.New("network operation failed")
	ErrFileSystemFailed    = errors.New("filesystem operation failed")
)

// StepFailure wraps the error a step's action reported. The action's own
// failure detail is carried unchanged; only the step name and its position in
// the sequence are attached.
type StepFailure struct {
	Step     string
	Position int
	Err      error
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("step %q (position %d) failed: %v", e.Step, e.Position, e.Err)
}

func (e *StepFailure) Unwrap() error {
	return e.Err
}

type DeployError struct {
	Type        error
	Context     string
	Cause       string
	Suggestion  string
	OriginalErr error
}

func (e *DeployError) Error() string {
	return e.OriginalErr.Error()
}

func (e *DeployError) Unwrap() error {
	return e.OriginalErr
}

func NewDeployError(errorType error, context, cause, suggestion string, originalErr error) *DeployError {
	return &DeployError{
		Type:        errorType,
		Context:     context,
		Cause:       cause,
		Suggestion:  suggestion,
		OriginalErr: originalErr,
	}
}

func NewManifestError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrManifestNotFound, context, cause, suggestion, originalErr)
}

func NewParseError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrManifestParseFailed, context, cause, suggestion, originalErr)
}

func NewSequenceError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrSequenceInvalid, context, cause, suggestion, originalErr)
}

func NewInstallError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrInstallFailed, context, cause, suggestion, originalErr)
}

func NewCollectError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrCollectFailed, context, cause, suggestion, originalErr)
}

func NewMigrateError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrMigrateFailed, context, cause, suggestion, originalErr)
}

func NewRuntimeError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrRuntimeFailed, context, cause, suggestion, originalErr)
}

func NewConfigError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrConfigInvalid, context, cause, suggestion, originalErr)
}

func NewNetworkError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrNetworkFailed, context, cause, suggestion, originalErr)
}

func NewFileSystemError(context, cause, suggestion string, originalErr error) *DeployError {
	return NewDeployError(ErrFileSystemFailed, context, cause, suggestion, originalErr)
}
