// Package fsutil provides the launcher directory layout and the filesystem
// helpers the installers share.
package fsutil

// File and directory permissions used for everything lodestone writes.
const (
	FileModeDefault = 0o644 // -rw-r--r--
	FileModeExec    = 0o755 // -rwxr-xr-x, runtime binaries and scripts

	DirModeDefault = 0o755 // drwxr-xr-x
)
