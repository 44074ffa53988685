package system

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystem_ReadFile_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.arazzo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arazzo: 1.0.1\n"), 0o644))

	fsys := &FileSystem{}

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "arazzo: 1.0.1\n", string(data))

	info, err := fsys.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, int64(14), info.Size())
}

func TestFileSystem_Stat_Error(t *testing.T) {
	t.Parallel()

	fsys := &FileSystem{}
	_, err := fsys.Stat(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFileSystem_WriteFile_Success(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "skills", "arazzo")
	fsys := &FileSystem{}

	require.NoError(t, fsys.MkdirAll(dir, 0o755))
	require.NoError(t, fsys.WriteFile(filepath.Join(dir, "SKILL.md"), []byte("# Arazzo"), 0o644))

	data, err := os.ReadFile(filepath.Join(dir, "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Arazzo", string(data))
}

func TestMemFS_Success(t *testing.T) {
	t.Parallel()

	m := NewMemFS(map[string]string{
		"/work/a.arazzo.yaml": "arazzo: 1.0.1\n",
	})

	data, err := m.ReadFile("/work/a.arazzo.yaml")
	require.NoError(t, err)
	assert.Equal(t, "arazzo: 1.0.1\n", string(data))

	info, err := m.Stat("/work")
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "parent directories are implied")

	require.NoError(t, m.MkdirAll("/out/skill", 0o755))
	require.NoError(t, m.WriteFile("/out/skill/SKILL.md", []byte("x"), 0o644))

	data, err = m.ReadFile("out/skill/SKILL.md")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestMemFS_Error(t *testing.T) {
	t.Parallel()

	m := NewMemFS(map[string]string{"/work/a.yaml": "a: 1\n"})

	_, err := m.Stat("/work/missing.yaml")
	require.ErrorIs(t, err, fs.ErrNotExist)

	err = m.MkdirAll("/work/a.yaml", 0o755)
	require.ErrorIs(t, err, fs.ErrExist)
}
