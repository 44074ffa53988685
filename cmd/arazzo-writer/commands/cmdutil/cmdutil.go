// Package cmdutil provides shared CLI utilities for all command groups.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/internal/config"
	"github.com/SteakFisher/arazzo-writer/validator"
	"github.com/spf13/cobra"
)

// StdinIndicator is the conventional Unix indicator to read from stdin.
const StdinIndicator = validator.StdinPath

// ErrUsage marks errors caused by how the command was invoked rather than by the documents it was given.
const ErrUsage = errors.Error("usage error")

// Exit codes of the arazzo-writer process.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// IsStdin returns true if the given path indicates stdin should be used.
func IsStdin(path string) bool {
	return path == StdinIndicator
}

// StdinIsPiped returns true when stdin is connected to a pipe (not a terminal),
// meaning data is being piped in from another command or a file redirect.
func StdinIsPiped() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) == 0
}

// InputFilesFromArgs returns args, or the stdin indicator when no args were given and stdin is piped.
func InputFilesFromArgs(args []string, piped bool) []string {
	if len(args) == 0 && piped {
		return []string{StdinIndicator}
	}
	return args
}

// ExactArgs is cobra.ExactArgs reporting failures as ErrUsage.
func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return ErrUsage.Wrap(err)
		}
		return nil
	}
}

// MinimumArgs is cobra.MinimumNArgs reporting failures as ErrUsage.
func MinimumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return ErrUsage.Wrap(err)
		}
		return nil
	}
}

// ExitError carries a process exit code out of a command whose report has already been printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Exit returns an *ExitError for code, or nil when code is ExitOK.
func Exit(code int) error {
	if code == ExitOK {
		return nil
	}
	return &ExitError{Code: code}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, ErrUsage), errors.Is(err, validator.ErrMissingArgument):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// Silent reports whether err was already reported to the user and should not be printed again.
func Silent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

type configKey struct{}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// Config returns the configuration loaded by the root command, or the defaults when none was loaded.
func Config(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	cfg, err := config.Load(config.WithoutEnv())
	if err != nil {
		return &config.Config{
			Validator: config.Validator{ExternalCommand: validator.DefaultExternalCommand, Timeout: validator.DefaultTimeout, Concurrency: validator.DefaultConcurrency},
			Log:       config.Log{Level: "warn", Format: "text"},
		}
	}
	return cfg
}

// NewValidator builds a validator from the loaded configuration. opts are applied last.
func NewValidator(cfg *config.Config, stdin io.Reader, opts ...validator.Option) *validator.Validator {
	base := []validator.Option{
		validator.WithStdin(stdin),
		validator.WithExternalCommand(cfg.Validator.ExternalCommand),
		validator.WithTimeout(cfg.Validator.Timeout),
		validator.WithConcurrency(cfg.Validator.Concurrency),
	}
	if cfg.Validator.SkipExternal {
		base = append(base, validator.WithSkipStage(validator.StageExternal))
	}
	return validator.New(append(base, opts...)...)
}
