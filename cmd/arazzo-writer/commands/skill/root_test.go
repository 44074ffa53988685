package skill

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/skill"
	"github.com/SteakFisher/arazzo-writer/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSkill(t *testing.T, opts ...skill.Option) *skill.Skill {
	t.Helper()
	s, err := skill.Load(opts...)
	require.NoError(t, err)
	return s
}

func TestListDocuments(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	listDocuments(&out, loadSkill(t))

	assert.Contains(t, out.String(), "arazzo-writer")
	assert.Contains(t, out.String(), "SKILL.md")
	assert.Contains(t, out.String(), "references/runtime-expressions.md")
	assert.Contains(t, out.String(), "Runtime expressions")
}

func TestShowDocument(t *testing.T) {
	t.Parallel()

	s := loadSkill(t)

	var content bytes.Buffer
	require.NoError(t, showDocument(&content, s, "SKILL.md", false))
	assert.Contains(t, content.String(), "# Writing Arazzo workflows")

	var outline bytes.Buffer
	require.NoError(t, showDocument(&outline, s, "SKILL.md", true))
	assert.Contains(t, outline.String(), "Writing Arazzo workflows\n")
	assert.Contains(t, outline.String(), "  Steps\n")
	assert.Contains(t, outline.String(), "    Success criteria\n")

	err := showDocument(&bytes.Buffer{}, s, "references/missing.md", false)
	require.ErrorIs(t, err, skill.ErrDocumentNotFound)
}

func TestInstallSkill(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := loadSkill(t)

	var out bytes.Buffer
	require.NoError(t, installSkill(t.Context(), &out, s, dir, false))
	assert.Contains(t, out.String(), "✅ Installed arazzo-writer (4 files)")
	assert.FileExists(t, filepath.Join(dir, "arazzo-writer", "SKILL.md"))

	err := installSkill(t.Context(), &out, s, dir, false)
	require.ErrorIs(t, err, skill.ErrFileExists)
	assert.Contains(t, err.Error(), "use --force to overwrite")

	require.NoError(t, installSkill(t.Context(), &bytes.Buffer{}, s, dir, true))
}

func TestInstallSkill_MemFS(t *testing.T) {
	t.Parallel()

	mem := system.NewMemFS(nil)
	s := loadSkill(t, skill.WithOutputFS(mem))

	var out bytes.Buffer
	require.NoError(t, installSkill(t.Context(), &out, s, "/skills", false))

	_, err := mem.Stat("/skills/arazzo-writer/references/validation.md")
	require.NoError(t, err)
}

func TestCheckSkill(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	assert.Equal(t, cmdutil.ExitOK, checkSkill(&stdout, &stderr, "arazzo-writer", nil))
	assert.Equal(t, "✅ skill arazzo-writer is ready to publish\n", stdout.String())
	assert.Empty(t, stderr.String())

	stdout.Reset()
	problems := []error{errors.New("name is invalid"), errors.New("description is required")}
	assert.Equal(t, cmdutil.ExitFailure, checkSkill(&stdout, &stderr, "Bad Name", problems))
	assert.Empty(t, stdout.String())
	assert.Equal(t, "❌ skill Bad Name has 2 problems:\n  1. name is invalid\n  2. description is required\n", stderr.String())
}

func TestCheckSkill_EmbeddedBundle(t *testing.T) {
	t.Parallel()

	s := loadSkill(t)

	var stdout, stderr bytes.Buffer
	code := checkSkill(&stdout, &stderr, s.Name, s.Check(t.Context()))
	assert.Equal(t, cmdutil.ExitOK, code, stderr.String())
}
