package cache

// Manager defines the interface for housekeeping of the shared launcher data.
type Manager interface {
	Clean(options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() string
	SetDirectory(dir string) error
}

// CleanOptions specifies what to remove. With nothing set, Java installs and
// assets are both removed.
type CleanOptions struct {
	Java   bool
	Assets bool
	// Incomplete removes only Java installs that never finished.
	Incomplete bool
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed  int64
	JavaFreed   int64
	AssetsFreed int64
	// Removed lists the Java install directories that were deleted.
	Removed []string
}

// Info reports the disk usage of the launcher directory.
type Info struct {
	Directory     string
	TotalSize     int64
	JavaSize      int64
	JavaInstalls  int
	Incomplete    int
	AssetsSize    int64
	AssetFiles    int
	LibrariesSize int64
	LibraryFiles  int
}
