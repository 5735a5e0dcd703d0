// Package archive extracts runtime and native archives and writes jar files.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/mholt/archives"
)

// Manager handles archive extraction and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// ExtractOptions tune ExtractAll.
type ExtractOptions struct {
	// StripComponents drops that many leading path elements from every entry.
	StripComponents int
	// Skip reports entries (by slash-separated name after stripping) to leave out.
	Skip func(name string) bool
	// Format overrides content sniffing.
	Format archives.Extractor
}

// JarFormat extracts zip and jar files.
var JarFormat archives.Extractor = archives.Zip{}

// FormatFromName picks the extractor for a file or URL name by its suffix.
func FormatFromName(name string) (archives.Extractor, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return archives.CompressedArchive{Compression: archives.Gz{}, Extraction: archives.Tar{}}, nil
	case strings.HasSuffix(lower, ".zip"), strings.HasSuffix(lower, ".jar"):
		return JarFormat, nil
	}
	return nil, fmt.Errorf("%w: %s", errutils.ErrUnknownExtension, path.Base(name))
}

// ExtractAll extracts all files from an archive to the specified destination directory.
// Entries that would land outside destDir are rejected.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string, opts ExtractOptions) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errutils.FS("open", archivePath, err)
	}
	defer func() { _ = f.Close() }()

	extractor := opts.Format
	var stream io.Reader = f
	if extractor == nil {
		format, identified, err := archives.Identify(ctx, archivePath, f)
		if err != nil {
			return &errutils.ParseError{Source: archivePath, Err: err}
		}
		ex, ok := format.(archives.Extractor)
		if !ok {
			return fmt.Errorf("%w: %s", errutils.ErrUnknownExtension, filepath.Base(archivePath))
		}
		extractor, stream = ex, identified
	}

	if err := fsutil.EnsureDir(destDir); err != nil {
		return errutils.FS("mkdir", destDir, err)
	}

	err = extractor.Extract(ctx, stream, func(ctx context.Context, info archives.FileInfo) error {
		return am.extractEntry(info, destDir, opts)
	})
	if err != nil {
		return errutils.Wrapf(err, "failed to extract %s", filepath.Base(archivePath))
	}
	return nil
}

func stripName(name string, components int) string {
	name = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
	if name == "" || name == "." {
		return ""
	}
	parts := strings.Split(name, "/")
	if len(parts) <= components {
		return ""
	}
	return strings.Join(parts[components:], "/")
}

// extractEntry processes a single archive entry and writes it to destDir.
func (am *Manager) extractEntry(info archives.FileInfo, destDir string, opts ExtractOptions) error {
	rel := stripName(info.NameInArchive, opts.StripComponents)
	if rel == "" {
		return nil
	}
	if opts.Skip != nil && opts.Skip(rel) {
		return nil
	}

	targetPath := filepath.Join(destDir, filepath.FromSlash(rel))
	if !fsutil.IsWithin(destDir, targetPath) {
		return fmt.Errorf("%w: archive entry %q escapes %s", errutils.ErrInvalidPath, info.NameInArchive, destDir)
	}

	switch {
	case info.IsDir():
		return os.MkdirAll(targetPath, fsutil.DirModeDefault)
	case info.Mode()&fs.ModeSymlink != 0:
		return writeSymlink(info.LinkTarget, targetPath)
	case isHardLink(info):
		linked := stripName(info.LinkTarget, opts.StripComponents)
		return writeHardLink(filepath.Join(destDir, filepath.FromSlash(linked)), targetPath)
	default:
		return writeRegularFile(info, targetPath)
	}
}

func isHardLink(info archives.FileInfo) bool {
	hdr, ok := info.Header.(*tar.Header)
	return ok && hdr.Typeflag == tar.TypeLink
}

// writeSymlink creates a symlink at targetPath pointing at linkTarget.
func writeSymlink(linkTarget, targetPath string) error {
	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return errutils.FS("mkdir", filepath.Dir(targetPath), err)
	}
	_ = os.Remove(targetPath)
	return errutils.FS("symlink", targetPath, os.Symlink(linkTarget, targetPath))
}

func writeHardLink(existing, targetPath string) error {
	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return errutils.FS("mkdir", filepath.Dir(targetPath), err)
	}
	_ = os.Remove(targetPath)
	if err := os.Link(existing, targetPath); err != nil {
		return fsutil.Copy(existing, targetPath)
	}
	return nil
}

// writeRegularFile writes a regular file from the archive entry to targetPath.
func writeRegularFile(info archives.FileInfo, targetPath string) error {
	src, err := info.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", info.NameInArchive, err)
	}
	defer func() { _ = src.Close() }()

	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return errutils.FS("mkdir", filepath.Dir(targetPath), err)
	}

	perm := info.Mode().Perm() | 0o600
	dst, err := fsutil.CreateFilePerm(targetPath, perm)
	if err != nil {
		return errutils.FS("create", targetPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return errutils.FS("write", targetPath, err)
	}
	if err := dst.Close(); err != nil {
		return errutils.FS("close", targetPath, err)
	}
	return errutils.FS("chmod", targetPath, os.Chmod(targetPath, perm))
}

// ReadFile returns the contents of name inside the archive. A missing entry yields
// an error matching fs.ErrNotExist.
func (am *Manager) ReadFile(ctx context.Context, archivePath, name string) ([]byte, error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s in %s: %w", name, filepath.Base(archivePath), fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
