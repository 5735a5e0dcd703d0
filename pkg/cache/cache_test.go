package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/lodestone/pkg/cache"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/java"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), fsutil.DirModeDefault))
	require.NoError(t, os.WriteFile(path, []byte(data), fsutil.FileModeDefault))
}

// setupLauncherDir lays out one finished and one interrupted Java install,
// an asset object and libraries of one instance and one server.
func setupLauncherDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "java_installs", "java_21", "bin", "java"), "java21")
	writeFile(t, filepath.Join(dir, "java_installs", "java_8", "bin", "java"), "java8")
	writeFile(t, filepath.Join(dir, "java_installs", "java_8", java.LockFileName), "partial")
	writeFile(t, filepath.Join(dir, "assets", "objects", "ab", "abcdef"), "sound")
	writeFile(t, filepath.Join(dir, "instances", "demo", "libraries", "a.jar"), "aaaa")
	writeFile(t, filepath.Join(dir, "servers", "srv", "libraries", "b.jar"), "bb")
	return dir
}

func TestGetInfo(t *testing.T) {
	dir := setupLauncherDir(t)

	info, err := cache.NewManager(dir).GetInfo()
	require.NoError(t, err)

	assert.Equal(t, dir, info.Directory)
	assert.Equal(t, 2, info.JavaInstalls)
	assert.Equal(t, 1, info.Incomplete)
	assert.Equal(t, int64(len("java21")+len("java8")+len("partial")), info.JavaSize)
	assert.Equal(t, 1, info.AssetFiles)
	assert.Equal(t, int64(6), info.LibrariesSize)
	assert.Equal(t, 2, info.LibraryFiles)
	assert.Equal(t, info.JavaSize+info.AssetsSize+info.LibrariesSize, info.TotalSize)
}

func TestGetInfo_EmptyLauncherDir(t *testing.T) {
	info, err := cache.NewManager(filepath.Join(t.TempDir(), "missing")).GetInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.TotalSize)
	assert.Equal(t, 0, info.JavaInstalls)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name        string
		options     cache.CleanOptions
		wantRemoved []string
		javaGone    []string
		javaKept    []string
		assetsGone  bool
	}{
		{
			name:        "default removes java and assets",
			options:     cache.CleanOptions{},
			wantRemoved: []string{"java_21", "java_8"},
			javaGone:    []string{"java_21", "java_8"},
			assetsGone:  true,
		},
		{
			name:        "incomplete only",
			options:     cache.CleanOptions{Incomplete: true},
			wantRemoved: []string{"java_8"},
			javaGone:    []string{"java_8"},
			javaKept:    []string{"java_21"},
		},
		{
			name:       "assets only",
			options:    cache.CleanOptions{Assets: true},
			javaKept:   []string{"java_21", "java_8"},
			assetsGone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupLauncherDir(t)

			result, err := cache.NewManager(dir).Clean(tt.options)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.wantRemoved, result.Removed)
			assert.Equal(t, result.JavaFreed+result.AssetsFreed, result.TotalFreed)

			for _, name := range tt.javaGone {
				assert.NoDirExists(t, filepath.Join(dir, "java_installs", name))
			}
			for _, name := range tt.javaKept {
				assert.DirExists(t, filepath.Join(dir, "java_installs", name))
			}
			if tt.assetsGone {
				assert.NoFileExists(t, filepath.Join(dir, "assets", "objects", "ab", "abcdef"))
				assert.DirExists(t, filepath.Join(dir, "assets"))
			} else {
				assert.FileExists(t, filepath.Join(dir, "assets", "objects", "ab", "abcdef"))
			}
			assert.FileExists(t, filepath.Join(dir, "instances", "demo", "libraries", "a.jar"))
		})
	}
}

func TestClean_NoDirectory(t *testing.T) {
	_, err := cache.NewManager("").Clean(cache.CleanOptions{})
	assert.ErrorIs(t, err, cache.ErrCacheDirectory)
}

func TestSetDirectory(t *testing.T) {
	mgr := cache.NewManager(t.TempDir())
	assert.ErrorIs(t, mgr.SetDirectory(""), cache.ErrCacheDirectory)

	dir := t.TempDir()
	require.NoError(t, mgr.SetDirectory(dir))
	assert.Equal(t, dir, mgr.GetDirectory())
}

func TestOperation_Clean(t *testing.T) {
	dir := setupLauncherDir(t)
	op := cache.NewOperation(cache.NewManager(dir))

	msg, err := op.Clean(cache.CleanOptions{Incomplete: true})
	require.NoError(t, err)
	assert.Contains(t, msg, "Successfully cleaned cache")
	assert.Contains(t, msg, "java_8")

	msg, err = op.Clean(cache.CleanOptions{Incomplete: true})
	require.NoError(t, err)
	assert.Contains(t, msg, "No files were removed")
}

func TestOperation_GetInfo(t *testing.T) {
	dir := setupLauncherDir(t)
	op := cache.NewOperation(cache.NewManager(dir))

	info, err := op.GetInfo()
	require.NoError(t, err)
	assert.Contains(t, info, "Cache Information:")
	assert.Contains(t, info, dir)
	assert.Contains(t, info, "2 installs, 1 incomplete")
	assert.Contains(t, info, "Libraries:")
	assert.Equal(t, dir, op.GetDirectory())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", cache.FormatBytes(0))
	assert.Equal(t, "1023 B", cache.FormatBytes(1023))
	assert.Equal(t, "1.0 KB", cache.FormatBytes(1024))
	assert.Equal(t, "1.5 MB", cache.FormatBytes(1536*1024))
}
