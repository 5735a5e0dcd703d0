package download

import (
	"context"
	"crypto/sha1" //nolint:gosec // upstream metadata publishes SHA-1 digests
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// ManagerImpl downloads through an http.Client.
type ManagerImpl struct {
	client http.Client
}

var _ Manager = (*ManagerImpl)(nil)

// NewManager creates a new download manager backed by client.
func NewManager(client http.Client) *ManagerImpl {
	return &ManagerImpl{client: client}
}

// FetchAll downloads multiple items concurrently. Items sharing a destination path
// are fetched once.
func (m *ManagerImpl) FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error) {
	byPath, order := buildPathIndex(items)

	jobs := make([]orchestrator.Job[string], 0, len(order))
	for _, path := range order {
		item := items[byPath[path][0]]
		jobs = append(jobs, orchestrator.Job[string]{
			Name: item.ID,
			Run: func(ctx context.Context) (string, error) {
				return m.Fetch(ctx, item)
			},
		})
	}

	results, err := orchestrator.Run(ctx, jobs, orchestrator.Options{
		Limit:    opts.Concurrency,
		Mode:     opts.Mode,
		Progress: opts.Progress,
		Phase:    opts.Phase,
		Label:    opts.Label,
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(items))
	for i, path := range order {
		for _, idx := range byPath[path] {
			out[items[idx].ID] = results[i].Value
		}
	}
	return out, nil
}

func buildPathIndex(items []Item) (map[string][]int, []string) {
	byPath := make(map[string][]int)
	order := make([]string, 0, len(items))
	for i, it := range items {
		if _, seen := byPath[it.Path]; !seen {
			order = append(order, it.Path)
		}
		byPath[it.Path] = append(byPath[it.Path], i)
	}
	return byPath, order
}

// Fetch downloads a single item and returns the path to the downloaded file.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item) (string, error) {
	if item.URL == "" {
		return "", fmt.Errorf("item %s has no URL: %w", item.ID, errutils.ErrInvalidPath)
	}
	if item.Path == "" {
		return "", fmt.Errorf("item %s has no destination: %w", item.ID, errutils.ErrInvalidPath)
	}

	if tryReuseExisting(item.Path, item.Checksum) {
		logger.Debug("reusing existing file", logger.Fields{"path": item.Path})
		return item.Path, nil
	}

	tmpPath := item.Path + ".download"
	if err := m.client.FetchToFile(ctx, item.URL, tmpPath); err != nil {
		return "", err
	}

	if item.Checksum != "" {
		ok, err := VerifyChecksum(tmpPath, item.Checksum)
		if err != nil {
			_ = os.Remove(tmpPath)
			return "", err
		}
		if !ok {
			_ = os.Remove(tmpPath)
			return "", fmt.Errorf("%s: %w", item.URL, errutils.ErrChecksumMismatch)
		}
	}

	if err := finalizeFile(tmpPath, item.Path, item.Executable); err != nil {
		return "", err
	}
	return item.Path, nil
}

func tryReuseExisting(absPath, checksum string) bool {
	st, err := os.Stat(absPath)
	if err != nil || st.IsDir() || st.Size() == 0 {
		return false
	}
	if checksum == "" {
		return true
	}
	ok, err := VerifyChecksum(absPath, checksum)
	return err == nil && ok
}

func finalizeFile(tmpPath, absPath string, executable bool) error {
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		return errutils.Wrap(err, "could not finalize file")
	}
	mode := os.FileMode(fsutil.FileModeDefault)
	if executable {
		mode = fsutil.FileModeExec
	}
	return errutils.FS("chmod", absPath, os.Chmod(absPath, mode))
}

// VerifyChecksum compares the file's digest with wantHex. The algorithm follows
// the digest length: 40 hex chars is SHA-1, anything else SHA-256.
func VerifyChecksum(path string, wantHex string) (bool, error) {
	want := normalizeHex(wantHex)
	var h hash.Hash
	if len(want) == sha1.Size*2 {
		h = sha1.New() //nolint:gosec
	} else {
		h = sha256.New()
	}

	f, err := os.Open(path)
	if err != nil {
		return false, errutils.FS("open", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(h, f); err != nil {
		return false, errutils.FS("hash", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)) == want, nil
}

func normalizeHex(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
