package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/mholt/archives"
)

// Entry is an in-memory file written into a jar.
type Entry struct {
	Name string
	Data []byte
}

// epoch keeps generated jars reproducible.
var epoch = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

// CreateJar writes entries, in order, into a deflated zip at jarPath.
func (am *Manager) CreateJar(ctx context.Context, jarPath string, entries []Entry) error {
	files := make([]archives.FileInfo, 0, len(entries))
	for _, e := range entries {
		files = append(files, memFile(e))
	}

	if err := fsutil.EnsureFileDir(jarPath); err != nil {
		return errutils.FS("mkdir", filepath.Dir(jarPath), err)
	}
	out, err := os.Create(jarPath)
	if err != nil {
		return errutils.FS("create", jarPath, err)
	}
	defer func() { _ = out.Close() }()

	if err := (archives.Zip{Compression: zip.Deflate}).Archive(ctx, out, files); err != nil {
		_ = out.Close()
		_ = os.Remove(jarPath)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(jarPath), err)
	}
	return errutils.FS("close", jarPath, out.Close())
}

// MergeJars writes a single jar holding head followed by the contents of every jar
// in order. The first occurrence of a name wins; library manifests and signature
// files are dropped since they would not match the merged contents.
func (am *Manager) MergeJars(ctx context.Context, jarPath string, head []Entry, jars []string) error {
	seen := make(map[string]struct{}, len(head))
	entries := append([]Entry(nil), head...)
	for _, e := range head {
		seen[e.Name] = struct{}{}
	}

	for _, jar := range jars {
		err := am.walkJar(ctx, jar, func(name string, data []byte) {
			if _, dup := seen[name]; dup || isSignatureOrManifest(name) {
				return
			}
			seen[name] = struct{}{}
			entries = append(entries, Entry{Name: name, Data: data})
		})
		if err != nil {
			return errutils.Wrapf(err, "failed to read %s", filepath.Base(jar))
		}
	}
	return am.CreateJar(ctx, jarPath, entries)
}

func (am *Manager) walkJar(ctx context.Context, jar string, fn func(name string, data []byte)) error {
	f, err := os.Open(jar)
	if err != nil {
		return errutils.FS("open", jar, err)
	}
	defer func() { _ = f.Close() }()

	return archives.Zip{}.Extract(ctx, f, func(_ context.Context, info archives.FileInfo) error {
		if info.IsDir() {
			return nil
		}
		rc, err := info.Open()
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		fn(info.NameInArchive, data)
		return nil
	})
}

func isSignatureOrManifest(name string) bool {
	upper := strings.ToUpper(name)
	if !strings.HasPrefix(upper, "META-INF/") {
		return false
	}
	if upper == "META-INF/MANIFEST.MF" {
		return true
	}
	for _, ext := range []string{".SF", ".RSA", ".DSA", ".EC"} {
		if strings.HasSuffix(upper, ext) {
			return true
		}
	}
	return false
}

func memFile(e Entry) archives.FileInfo {
	info := memInfo{name: e.Name, size: int64(len(e.Data))}
	return archives.FileInfo{
		FileInfo:      info,
		NameInArchive: e.Name,
		Open: func() (fs.File, error) {
			return &memReader{Reader: bytes.NewReader(e.Data), info: info}, nil
		},
	}
}

type memInfo struct {
	name string
	size int64
}

func (m memInfo) Name() string       { return filepath.Base(m.name) }
func (m memInfo) Size() int64        { return m.size }
func (m memInfo) Mode() fs.FileMode  { return fsutil.FileModeDefault }
func (m memInfo) ModTime() time.Time { return epoch }
func (m memInfo) IsDir() bool        { return false }
func (m memInfo) Sys() any           { return nil }

type memReader struct {
	*bytes.Reader
	info memInfo
}

func (m *memReader) Stat() (fs.FileInfo, error) { return m.info, nil }
func (m *memReader) Close() error               { return nil }
