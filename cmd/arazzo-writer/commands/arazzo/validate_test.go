package arazzo

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchRoots(t *testing.T) {
	t.Parallel()

	roots := watchRoots([]string{
		"pets.arazzo.yaml",
		"workflows/**/*.arazzo.yaml",
		"*.yaml",
		filepath.Join("a", "b", "{x,y}.yaml"),
	})

	assert.Equal(t, []string{
		"pets.arazzo.yaml",
		"workflows",
		".",
		filepath.Join("a", "b"),
	}, roots)
}

func TestDocumentMatcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	matches := documentMatcher([]string{
		filepath.Join(dir, "single.arazzo.yaml"),
		filepath.Join(dir, "flows", "**", "*.arazzo.yaml"),
	})

	tests := []struct {
		path     string
		expected bool
	}{
		{path: filepath.Join(dir, "single.arazzo.yaml"), expected: true},
		{path: filepath.Join(dir, "flows", "orders.arazzo.yaml"), expected: true},
		{path: filepath.Join(dir, "flows", "nested", "deep", "pets.arazzo.yaml"), expected: true},
		{path: filepath.Join(dir, "flows", "notes.yaml"), expected: false},
		{path: filepath.Join(dir, "other.arazzo.yaml"), expected: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, matches(tt.path), tt.path)
	}
}

func TestHasGlobMeta(t *testing.T) {
	t.Parallel()

	assert.False(t, hasGlobMeta("workflows/pets.arazzo.yaml"))
	assert.True(t, hasGlobMeta("workflows/*.yaml"))
	assert.True(t, hasGlobMeta("workflows/{a,b}.yaml"))
	assert.True(t, hasGlobMeta("workflows/pet?.yaml"))
}

func newTestValidator() *validator.Validator {
	return validator.New(validator.WithSkipStage(validator.StageExternal), validator.WithStdin(strings.NewReader("")))
}

func TestValidateDocuments_Success(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(petAdoptionDocument)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pets.arazzo.yaml"), data, 0o600))

	var stdout, stderr bytes.Buffer
	code := validateDocuments(t.Context(), newTestValidator(), []string{filepath.Join(dir, "*.arazzo.yaml")}, &stdout, &stderr, OutputFormatText)

	assert.Equal(t, cmdutil.ExitOK, code, stderr.String())
	assert.Contains(t, stderr.String(), "pets.arazzo.yaml is valid - 0 errors")
	assert.Contains(t, stderr.String(), "skipped")
	assert.Empty(t, stdout.String())
}

func TestValidateDocuments_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.arazzo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arazzo: [unterminated\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := validateDocuments(t.Context(), newTestValidator(), []string{path}, &stdout, &stderr, OutputFormatJSON)

	assert.Equal(t, cmdutil.ExitFailure, code)
	assert.Contains(t, stdout.String(), `"status": "failed"`)
}

func TestValidateDocuments_MissingArgument(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	code := validateDocuments(t.Context(), newTestValidator(), nil, &bytes.Buffer{}, &stderr, OutputFormatText)

	assert.Equal(t, cmdutil.ExitUsage, code)
	assert.Contains(t, stderr.String(), "Error: ")
}

func TestWatchDocuments_RejectsStdin(t *testing.T) {
	t.Parallel()

	err := watchDocuments(t.Context(), newTestValidator(), []string{"-"}, &bytes.Buffer{}, &bytes.Buffer{}, OutputFormatText)
	require.ErrorIs(t, err, cmdutil.ErrUsage)
	assert.Equal(t, cmdutil.ExitUsage, cmdutil.ExitCode(err))
}
