package cmdutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/internal/config"
	"github.com/SteakFisher/arazzo-writer/validator"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStdin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "dash is stdin", path: "-", expected: true},
		{name: "empty is not stdin", path: "", expected: false},
		{name: "file path is not stdin", path: "workflow.arazzo.yaml", expected: false},
		{name: "double dash is not stdin", path: "--", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsStdin(tt.path))
		})
	}
}

func TestInputFilesFromArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		piped    bool
		expected []string
	}{
		{name: "no args and terminal stdin", args: nil, piped: false, expected: nil},
		{name: "no args and piped stdin", args: nil, piped: true, expected: []string{StdinIndicator}},
		{name: "args win over piped stdin", args: []string{"a.yaml", "b.yaml"}, piped: true, expected: []string{"a.yaml", "b.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, InputFilesFromArgs(tt.args, tt.piped))
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: ExitOK},
		{name: "exit error", err: Exit(1), expected: 1},
		{name: "wrapped exit error", err: fmt.Errorf("validate: %w", &ExitError{Code: 3}), expected: 3},
		{name: "usage error", err: ErrUsage.Wrap(errors.New("accepts 1 arg(s), received 0")), expected: ExitUsage},
		{name: "missing argument", err: validator.ErrMissingArgument, expected: ExitUsage},
		{name: "file not found", err: validator.ErrFileNotFound.Wrapf("%s", "missing.yaml"), expected: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestExit_OK(t *testing.T) {
	t.Parallel()

	require.NoError(t, Exit(ExitOK))
	assert.True(t, Silent(Exit(ExitFailure)))
	assert.False(t, Silent(errors.New("boom")))
}

func TestExactArgs_UsageError(t *testing.T) {
	t.Parallel()

	err := ExactArgs(1)(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
	assert.Equal(t, ExitUsage, ExitCode(err))

	require.NoError(t, MinimumArgs(1)(&cobra.Command{}, []string{"a", "b"}))
}

func TestConfig_FromContext(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Validator: config.Validator{ExternalCommand: "spectral lint"}}
	ctx := WithConfig(context.Background(), cfg)

	assert.Same(t, cfg, Config(ctx))
	assert.Equal(t, validator.DefaultConcurrency, Config(context.Background()).Validator.Concurrency)
}
