// Located in pkg/runtime/runtime.go
package runtime

import (
	"context"
	"io"
)

// ExecSpec defines the parameters for running a collaborator command.
type ExecSpec struct {
	Image            string
	Command          []string
	EnvVars          map[string]string
	VolumeMounts     map[string]string
	WorkingDirectory string
}

// Runner defines the contract for executing collaborator commands. A non-nil
// error means the command failed; its message is the step's failure detail.
type Runner interface {
	Run(ctx context.Context, spec ExecSpec, output io.Writer) error
}
