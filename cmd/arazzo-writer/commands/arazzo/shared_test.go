package arazzo

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValidationErrors(t *testing.T) {
	t.Parallel()

	var errs []error
	for i := range 10 {
		errs = append(errs, fmt.Errorf("problem %d", i+1))
	}

	out := formatValidationErrors(errs)
	assert.True(t, strings.HasPrefix(out, " 1. problem 1\n"), "indexes should be right aligned")
	assert.Contains(t, out, "10. problem 10\n")
}

func TestIndent(t *testing.T) {
	t.Parallel()

	assert.Empty(t, indent("", "  "))
	assert.Equal(t, "  a\n  b\n", indent("a\nb\n", "  "))
	assert.Equal(t, "> a\n> b", indent("a\nb", "> "))
}

func TestLoadDocument_Stdin(t *testing.T) {
	t.Parallel()

	src := `arazzo: 1.0.1
info:
  title: Stdin
  version: 2.0.0
sourceDescriptions:
  - name: api
    url: ./openapi.yaml
    type: openapi
workflows:
  - workflowId: ping
    steps:
      - stepId: ping
        operationId: ping
`
	var stderr bytes.Buffer
	doc, err := loadDocument(t.Context(), "-", strings.NewReader(src), &stderr)
	require.NoError(t, err)

	assert.Equal(t, "Stdin", doc.Info.Title)
	assert.Equal(t, "2.0.0", doc.Info.Version)
	assert.Empty(t, stderr.String())
}

func TestLoadDocument_ReportsFindings(t *testing.T) {
	t.Parallel()

	src := `arazzo: 1.0.1
info:
  title: Broken
  version: 1.0.0
workflows: []
`
	var stderr bytes.Buffer
	doc, err := loadDocument(t.Context(), "-", strings.NewReader(src), &stderr)
	require.NoError(t, err, "findings should not stop the command")
	require.NotNil(t, doc)

	assert.Contains(t, stderr.String(), "⚠️  Found")
	assert.Contains(t, stderr.String(), "validation errors in document:")
}

func TestLoadDocument_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := loadDocument(t.Context(), "does-not-exist.arazzo.yaml", strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
	assert.NotErrorIs(t, err, cmdutil.ErrUsage)
}
