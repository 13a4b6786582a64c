package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"deploykit/pkg/runtime"
)

// ExecRunner implements the Runner interface by executing collaborator
// commands directly on the host. Image and volume mount settings are ignored;
// the command sees the host filesystem as-is.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner instance.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command, inheriting the process environment plus the
// spec's variables. A non-zero exit status is reported as an error.
func (r *ExecRunner) Run(ctx context.Context, spec runtime.ExecSpec, output io.Writer) error {
	if len(spec.Command) == 0 {
		return fmt.Errorf("exec runner requires a non-empty command")
	}

	slog.Info("Running command", "command", spec.Command, "workdir", spec.WorkingDirectory)

	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.WorkingDirectory
	cmd.Stdout = output
	cmd.Stderr = output

	cmd.Env = os.Environ()
	for key, value := range spec.EnvVars {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %v failed: %w", spec.Command, err)
	}

	return nil
}
