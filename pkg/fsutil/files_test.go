package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove_File(t *testing.T) {
	tempDir := t.TempDir()
	srcFile := filepath.Join(tempDir, "source.txt")
	dstFile := filepath.Join(tempDir, "nested", "destination.txt")

	require.NoError(t, os.WriteFile(srcFile, []byte("Hello, World!"), 0o644))
	require.NoError(t, Move(srcFile, dstFile))

	moved, err := os.ReadFile(dstFile)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(moved))
	assert.NoFileExists(t, srcFile)
}

func TestMove_Directory(t *testing.T) {
	tempDir := t.TempDir()
	srcDir := filepath.Join(tempDir, "source_dir")
	dstDir := filepath.Join(tempDir, "destination_dir")

	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "subdir", "file.txt"), []byte("content"), 0o644))

	require.NoError(t, Move(srcDir, dstDir))
	assert.FileExists(t, filepath.Join(dstDir, "subdir", "file.txt"))
	assert.NoDirExists(t, srcDir)
}

func TestMove_Errors(t *testing.T) {
	assert.Error(t, Move("", "dst"))
	assert.Error(t, Move(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "dst")))
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bin", "java"), []byte("#!/bin/sh"), 0o755))

	require.NoError(t, CopyDir(src, dst))

	info, err := os.Stat(filepath.Join(dst, "bin", "java"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.DirExists(t, src)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.json")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), FileModeDefault))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), FileModeDefault))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteAndReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "details.json")
	in := map[string]int{"minimumLauncherVersion": 3}

	require.NoError(t, WriteJSONAtomic(path, in))

	var out map[string]int
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, in, out)

	assert.Error(t, ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &out))
}
