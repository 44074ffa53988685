// Package system abstracts the filesystem so the validator and skill installer can run against memory in tests.
package system

import (
	"io/fs"
	"os"
	"strings"
	"testing/fstest"
)

// VirtualFS is the read side used to locate and load documents.
type VirtualFS interface {
	fs.StatFS
	fs.ReadFileFS
}

// WritableFS additionally supports creating files.
type WritableFS interface {
	VirtualFS
	MkdirAll(path string, perm fs.FileMode) error
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

// FileSystem is backed by the operating system. Names are OS paths, absolute or relative to the working directory.
type FileSystem struct{}

var _ WritableFS = (*FileSystem)(nil)

func (fsys *FileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

func (fsys *FileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (fsys *FileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fsys *FileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fsys *FileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// MemFS is an in-memory filesystem. A leading slash is ignored so absolute paths can be used as keys.
type MemFS struct {
	fstest.MapFS
}

var _ WritableFS = MemFS{}

// NewMemFS returns a MemFS seeded with files, keyed by path.
func NewMemFS(files map[string]string) MemFS {
	m := MemFS{MapFS: fstest.MapFS{}}
	for name, content := range files {
		m.MapFS[memName(name)] = &fstest.MapFile{Data: []byte(content), Mode: 0o644}
	}
	return m
}

func (m MemFS) Open(name string) (fs.File, error) {
	return m.MapFS.Open(memName(name))
}

func (m MemFS) Stat(name string) (fs.FileInfo, error) {
	return m.MapFS.Stat(memName(name))
}

func (m MemFS) ReadFile(name string) ([]byte, error) {
	return m.MapFS.ReadFile(memName(name))
}

// MkdirAll records the directory. Parents are implied by MapFS.
func (m MemFS) MkdirAll(path string, perm fs.FileMode) error {
	name := memName(path)
	if name == "." {
		return nil
	}
	if f, ok := m.MapFS[name]; ok && !f.Mode.IsDir() {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	m.MapFS[name] = &fstest.MapFile{Mode: fs.ModeDir | perm}
	return nil
}

func (m MemFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.MapFS[memName(name)] = &fstest.MapFile{Data: data, Mode: perm}
	return nil
}

func memName(name string) string {
	name = strings.TrimLeft(strings.ReplaceAll(name, "\\", "/"), "/")
	if name == "" {
		return "."
	}
	return name
}
