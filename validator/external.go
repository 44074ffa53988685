package validator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/internal/logger"
	"github.com/sirupsen/logrus"
	"mvdan.cc/sh/v3/shell"
)

// ErrExternalTimeout is reported when the external validator exceeds the configured timeout.
const ErrExternalTimeout = errors.Error("external validator timed out")

// RunOutput is what an external command produced.
type RunOutput struct {
	ExitCode int
	// Output is the combined stdout and stderr.
	Output []byte
}

// Runner locates and executes the external validator.
type Runner interface {
	LookPath(file string) (string, error)
	// Run executes name with args. A non-zero exit status is reported through RunOutput, not as an error.
	Run(ctx context.Context, name string, args ...string) (RunOutput, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Dir is the working directory of the command. Empty means the current directory.
	Dir string
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (RunOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.WaitDelay = time.Second

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return RunOutput{ExitCode: exitErr.ExitCode(), Output: out}, nil
		}
		return RunOutput{ExitCode: -1, Output: out}, err
	}

	return RunOutput{Output: out}, nil
}

func (v *Validator) runExternal(ctx context.Context, path string, data []byte) (StageResult, error) {
	sr := StageResult{Stage: StageExternal}

	if v.skip[StageExternal] {
		sr.Status = StatusSkipped
		sr.Reason = "disabled"
		return sr, nil
	}

	fields, err := shell.Fields(v.externalCommand, os.Getenv)
	if err != nil {
		return sr, fmt.Errorf("invalid external command %q: %w", v.externalCommand, err)
	}
	if len(fields) == 0 {
		sr.Status = StatusSkipped
		sr.Reason = "no external command configured"
		return sr, nil
	}

	name := fields[0]
	if _, err := v.runner.LookPath(name); err != nil {
		logger.G(ctx).WithError(err).WithField("command", name).Debug("external validator not found")
		sr.Status = StatusSkipped
		sr.Reason = "not installed"
		return sr, nil
	}

	target := path
	if path == StdinPath {
		tmp, cleanup, err := writeTemp(data)
		if err != nil {
			return sr, err
		}
		defer cleanup()
		target = tmp
	}

	runCtx := ctx
	if v.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	args := append(append([]string{}, fields[1:]...), target)

	start := time.Now()
	out, runErr := v.runner.Run(runCtx, name, args...)
	sr.Duration = time.Since(start)
	sr.Output = string(out.Output)

	if err := ctx.Err(); err != nil {
		return sr, err
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		sr.Status = StatusFailed
		sr.Errors = []error{ErrExternalTimeout.Wrapf("%s did not finish within %s", name, v.timeout)}
	case runErr != nil:
		sr.Status = StatusFailed
		sr.Errors = []error{fmt.Errorf("failed to run %s: %w", name, runErr)}
	case out.ExitCode != 0:
		sr.Status = StatusFailed
		sr.Errors = []error{fmt.Errorf("%s exited with status %d", name, out.ExitCode)}
	default:
		sr.Status = StatusPassed
	}

	logger.G(ctx).WithFields(logrus.Fields{
		"command":   name,
		"exit_code": out.ExitCode,
		"duration":  sr.Duration,
	}).Debug("external validator finished")

	return sr, nil
}

// writeTemp copies a document read from stdin to a file the external validator can open.
func writeTemp(data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "arazzo-*.yaml")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temporary file: %w", err)
	}

	return f.Name(), cleanup, nil
}
