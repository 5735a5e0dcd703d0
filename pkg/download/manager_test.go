package download

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glorpus-work/lodestone/pkg/errutils"
	lshttp "github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sha1Hex(s string) string {
	h := sha1.Sum([]byte(s)) //nolint:gosec
	return hex.EncodeToString(h[:])
}

func sha256Hex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func newManager() *ManagerImpl {
	return NewManager(lshttp.NewHTTPClient(lshttp.Options{Timeout: 5 * time.Second, RetryWait: time.Millisecond}))
}

func contentServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("content of " + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := contentServer(t, nil)
	dir := t.TempDir()

	tests := []struct {
		name      string
		item      Item
		wantErrIs error
	}{
		{
			name: "no checksum",
			item: Item{ID: "a", URL: srv.URL + "/a.jar", Path: filepath.Join(dir, "a.jar")},
		},
		{
			name: "sha1 checksum",
			item: Item{ID: "b", URL: srv.URL + "/b.jar", Path: filepath.Join(dir, "sub", "b.jar"), Checksum: sha1Hex("content of /b.jar")},
		},
		{
			name: "sha256 checksum",
			item: Item{ID: "c", URL: srv.URL + "/c.jar", Path: filepath.Join(dir, "c.jar"), Checksum: sha256Hex("content of /c.jar")},
		},
		{
			name:      "checksum mismatch",
			item:      Item{ID: "d", URL: srv.URL + "/d.jar", Path: filepath.Join(dir, "d.jar"), Checksum: sha1Hex("something else")},
			wantErrIs: errutils.ErrChecksumMismatch,
		},
		{
			name:      "not found",
			item:      Item{ID: "e", URL: srv.URL + "/missing", Path: filepath.Join(dir, "e.jar")},
			wantErrIs: errutils.ErrTransport,
		},
		{
			name:      "missing url",
			item:      Item{ID: "f", Path: filepath.Join(dir, "f.jar")},
			wantErrIs: errutils.ErrInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := newManager().Fetch(context.Background(), tt.item)
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.NoFileExists(t, tt.item.Path)
				assert.NoFileExists(t, tt.item.Path+".download")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.item.Path, path)
			assert.FileExists(t, path)
		})
	}
}

func TestFetch_ReusesIntactFile(t *testing.T) {
	var hits atomic.Int32
	srv := contentServer(t, &hits)
	path := filepath.Join(t.TempDir(), "lib.jar")
	item := Item{ID: "lib", URL: srv.URL + "/lib.jar", Path: path, Checksum: sha1Hex("content of /lib.jar")}

	_, err := newManager().Fetch(context.Background(), item)
	require.NoError(t, err)
	_, err = newManager().Fetch(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	require.NoError(t, os.WriteFile(path, []byte("corrupted"), 0o644))
	_, err = newManager().Fetch(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetch_Executable(t *testing.T) {
	srv := contentServer(t, nil)
	path := filepath.Join(t.TempDir(), "bin", "java")

	_, err := newManager().Fetch(context.Background(), Item{ID: "java", URL: srv.URL + "/java", Path: path, Executable: true})
	require.NoError(t, err)

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, st.Mode().Perm()&0o100)
}

func TestFetchAll_DeduplicatesDestinations(t *testing.T) {
	var hits atomic.Int32
	srv := contentServer(t, &hits)
	dir := t.TempDir()
	shared := filepath.Join(dir, "objects", "ab", "abcd")

	items := []Item{
		{ID: "sound/a.ogg", URL: srv.URL + "/abcd", Path: shared},
		{ID: "sound/b.ogg", URL: srv.URL + "/abcd", Path: shared},
		{ID: "lang/en.json", URL: srv.URL + "/ef01", Path: filepath.Join(dir, "objects", "ef", "ef01")},
	}

	progress := make(chan orchestrator.Event, 10)
	paths, err := newManager().FetchAll(context.Background(), items, Options{Concurrency: 2, Progress: progress, Label: "Downloaded asset"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, shared, paths["sound/a.ogg"])
	assert.Equal(t, shared, paths["sound/b.ogg"])
	assert.Len(t, progress, 2)
}

func TestFetchAll_CollectAllReportsFailures(t *testing.T) {
	srv := contentServer(t, nil)
	dir := t.TempDir()

	items := []Item{
		{ID: "ok", URL: srv.URL + "/ok", Path: filepath.Join(dir, "ok")},
		{ID: "bad", URL: srv.URL + "/missing", Path: filepath.Join(dir, "bad")},
	}

	_, err := newManager().FetchAll(context.Background(), items, Options{Mode: orchestrator.CollectAll})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.FileExists(t, filepath.Join(dir, "ok"))
}
